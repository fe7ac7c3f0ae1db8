package service

import (
	"encoding/json"

	"allure/internal/models"
	"allure/internal/repository"
)

// NotificationService stores notification intents. The core only decides
// that a notification must be sent and with what payload; SMS/push/email/
// WhatsApp delivery is a separate subsystem reading these rows.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	return s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
}

func (s *NotificationService) NotifyBookingPaid(modelUserID, bookingID uint, priceCents int64) error {
	return s.Notify(modelUserID, "BOOKING_PAID", "New paid booking",
		"A customer has paid for a booking. Funds are held until completion.",
		map[string]interface{}{"booking_id": bookingID, "price_cents": priceCents})
}

func (s *NotificationService) NotifyBookingCompleted(customerUserID, bookingID uint) error {
	return s.Notify(customerUserID, "BOOKING_COMPLETED", "Booking completed",
		"Your booking has been completed.",
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyEarningReleased(modelUserID, bookingID uint, netCents int64) error {
	return s.Notify(modelUserID, "EARNING_RELEASED", "Earning released",
		"Your booking earning has been released to your balance.",
		map[string]interface{}{"booking_id": bookingID, "net_cents": netCents})
}

func (s *NotificationService) NotifyReferralCommission(referrerUserID, bookingID uint, amountCents int64) error {
	return s.Notify(referrerUserID, "REFERRAL_COMMISSION", "Referral commission",
		"You earned a commission from a referred model's booking.",
		map[string]interface{}{"booking_id": bookingID, "amount_cents": amountCents})
}

func (s *NotificationService) NotifyBookingRefunded(customerUserID, bookingID uint, amountCents int64) error {
	return s.Notify(customerUserID, "BOOKING_REFUNDED", "Booking refunded",
		"Your booking was cancelled and the amount refunded.",
		map[string]interface{}{"booking_id": bookingID, "amount_cents": amountCents})
}

func (s *NotificationService) NotifyBookingCancelled(modelUserID, bookingID uint) error {
	return s.Notify(modelUserID, "BOOKING_CANCELLED", "Booking cancelled",
		"A held booking was cancelled and refunded to the customer.",
		map[string]interface{}{"booking_id": bookingID})
}

func (s *NotificationService) NotifyBookingDisputed(userID, bookingID uint) error {
	return s.Notify(userID, "BOOKING_DISPUTED", "Booking disputed",
		"The booking is under review. Funds stay held until an administrator resolves it.",
		map[string]interface{}{"booking_id": bookingID})
}
