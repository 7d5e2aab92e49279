package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/sgurkov/lesson_booking/internal/model"
	"go.uber.org/zap"
)

// TelegramNotifier шлёт инструктору сообщения о бронированиях в телеграм
type TelegramNotifier struct {
	bot    *bot.Bot
	logger *zap.Logger
}

func NewTelegramNotifier(token string, logger *zap.Logger) (*TelegramNotifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		logger: logger,
	}, nil
}

// send отправляет сообщение, проглатывая ошибки (доставка best-effort)
func (n *TelegramNotifier) send(ctx context.Context, instructor *model.Instructor, text string) {
	if instructor.TelegramChatID == nil {
		return
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: *instructor.TelegramChatID,
		Text:   text,
	})

	if err != nil {
		n.logger.Warn("Failed to send telegram notification",
			zap.Int64("instructor_id", instructor.ID),
			zap.Error(err))
	}
}

func (n *TelegramNotifier) BookingCreated(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, appointmentType *model.AppointmentType) {
	title := ""
	if appointmentType != nil {
		title = appointmentType.Title
	}

	text := fmt.Sprintf("📅 Новая запись: %s\n%s - %s",
		title,
		appointment.StartTime.Format("02.01.2006 15:04"),
		appointment.EndTime.Format("15:04"))

	if appointment.Status == model.AppointmentStatusPending {
		text += "\n⏳ Требуется ваше подтверждение"
	}

	n.send(ctx, instructor, text)
}

func (n *TelegramNotifier) BookingApproved(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
	n.send(ctx, instructor, fmt.Sprintf("✅ Запись #%d подтверждена", appointment.ID))
}

func (n *TelegramNotifier) BookingRejected(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment) {
	n.send(ctx, instructor, fmt.Sprintf("❌ Запись #%d отклонена", appointment.ID))
}

func (n *TelegramNotifier) BookingCancelled(ctx context.Context, instructor *model.Instructor, appointment *model.Appointment, reason string) {
	text := fmt.Sprintf("🚫 Запись #%d отменена", appointment.ID)
	if reason != "" {
		text += "\nПричина: " + reason
	}
	n.send(ctx, instructor, text)
}
