package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// TelegramService pings the staff chat about new orders and reservations.
// It is a no-op when unconfigured.
type TelegramService struct {
	botToken    string
	adminChatID string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the staff chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// OrderItemNotification is one line of an order notification.
type OrderItemNotification struct {
	Name     string
	Quantity int
	Price    float64
}

// OrderNotification contains order data for the staff chat message.
type OrderNotification struct {
	OrderNumber string
	Items       []OrderItemNotification
	TotalAmount float64
	UserName    string
	UserPhone   string
	Status      string
}

// NotifyNewOrder formats and sends a new-order message to the staff chat.
func (s *TelegramService) NotifyNewOrder(n OrderNotification) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>New order %s</b>\n", n.OrderNumber)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", n.UserName, n.UserPhone)
	for _, item := range n.Items {
		fmt.Fprintf(&b, "• %s × %d — ₹%.2f\n", item.Name, item.Quantity, item.Price)
	}
	fmt.Fprintf(&b, "Total: ₹%.2f\n", n.TotalAmount)
	fmt.Fprintf(&b, "Status: %s", n.Status)

	return s.SendToAdmin(b.String())
}

// ReservationNotification contains reservation data for the staff chat message.
type ReservationNotification struct {
	Name      string
	Phone     string
	Date      string
	Time      string
	PartySize int
}

// NotifyNewReservation formats and sends a new-reservation message to the
// staff chat.
func (s *TelegramService) NotifyNewReservation(n ReservationNotification) error {
	text := fmt.Sprintf(
		"<b>New reservation</b>\n%s (%s)\nTable for %d on %s at %s",
		n.Name, n.Phone, n.PartySize, n.Date, n.Time,
	)
	return s.SendToAdmin(text)
}
