// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/localshop-backend/internal/config"
	"github.com/javajoker/localshop-backend/internal/models"
)

type NotificationService struct {
	db      *gorm.DB
	config  *config.Config
	pending sync.WaitGroup
}

const orderConfirmationTemplate = `<p>Hi {{.Name}},</p>
<p>We received your order <strong>{{.OrderID}}</strong>.</p>
<ul>{{range .Items}}
<li>{{.Name}} x {{.Quantity}}: {{.Price}}</li>{{end}}
</ul>
<p>Total: {{.Total}}</p>`

const accessChangeTemplate = `<p>Hi {{.Name}},</p>
<p>Your account was updated. Role: {{.Role}}. Active: {{.Active}}.</p>`

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// NotifyOrderPlaced sends the order confirmation in the background.
func (s *NotificationService) NotifyOrderPlaced(orderID uuid.UUID) {
	s.dispatch(func() { s.SendOrderConfirmation(orderID) })
}

// NotifyAccessChanged sends the access change notice in the background.
func (s *NotificationService) NotifyAccessChanged(user models.User) {
	s.dispatch(func() { s.SendAccessChangeNotification(user) })
}

func (s *NotificationService) dispatch(send func()) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		send()
	}()
}

// Wait blocks until every background send has finished or ctx is done.
// Call it before closing the database.
func (s *NotificationService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendOrderConfirmation e-mails the buyer a summary of a new order. Failures
// are logged; they never affect the order.
func (s *NotificationService) SendOrderConfirmation(orderID uuid.UUID) {
	var order models.Order
	if err := s.db.Preload("User").
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&order, "id = ?", orderID).Error; err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Warn("Failed to load order for confirmation")
		return
	}
	if order.User == nil {
		return
	}

	type line struct {
		Name     string
		Quantity int
		Price    string
	}
	items := make([]line, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductID.String()
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, line{Name: name, Quantity: item.Quantity, Price: item.Price.StringFixed(2)})
	}

	body, err := s.renderTemplate(orderConfirmationTemplate, map[string]interface{}{
		"Name":    order.User.Name,
		"OrderID": order.ID,
		"Items":   items,
		"Total":   order.Total.StringFixed(2),
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to render order confirmation")
		return
	}

	if err := s.sendEmail(order.User.Email, "Order confirmation", body); err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Warn("Failed to send order confirmation")
	}
}

func (s *NotificationService) SendAccessChangeNotification(user models.User) {
	body, err := s.renderTemplate(accessChangeTemplate, map[string]interface{}{
		"Name":   user.Name,
		"Role":   user.Role,
		"Active": user.Active,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to render access change notice")
		return
	}

	if err := s.sendEmail(user.Email, "Your account was updated", body); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to send access change notice")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email not configured, skipping send")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
