package usecase

import (
	"context"

	"github.com/bunnystock/leaddesk/internal/entity"
)

// LeadNotice carries what both notification mails need.
type LeadNotice struct {
	LeadID  string `json:"lead_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func NoticeFromLead(l *entity.Lead) LeadNotice {
	return LeadNotice{
		LeadID:  l.ID,
		Name:    l.Name,
		Phone:   l.Phone,
		Email:   l.Email,
		Message: l.Message,
	}
}

// Notifier delivers the two intake notifications. Implementations: the SMTP
// mailer (inline) and the queue producer (delivered by the worker).
type Notifier interface {
	NotifyInternal(ctx context.Context, notice LeadNotice) error
	NotifyCustomer(ctx context.Context, notice LeadNotice) error
}

type Metrics interface {
	LeadCreated()
	Notification(kind string, err error)
	StatusChanged(status entity.Status)
	QueryFallback()
}

type nopMetrics struct{}

func (nopMetrics) LeadCreated()                {}
func (nopMetrics) Notification(string, error)  {}
func (nopMetrics) StatusChanged(entity.Status) {}
func (nopMetrics) QueryFallback()              {}

// NopMetrics discards every observation.
var NopMetrics Metrics = nopMetrics{}
