package service

import (
	"context"
	"fmt"
	"strings"

	"attendance-service/internal/models"
	"attendance-service/pkg/civildate"
)

// Notifier tells administrators about new retroactive requests.
type Notifier interface {
	RetroactiveRequested(ctx context.Context, professor *models.Professor, record *models.AttendanceRecord) error
}

type NopNotifier struct{}

func (NopNotifier) RetroactiveRequested(context.Context, *models.Professor, *models.AttendanceRecord) error {
	return nil
}

// MessageSender delivers a text message to a chat.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// ChatNotifier posts retroactive requests to an administrators chat.
type ChatNotifier struct {
	sender MessageSender
	chatID int64
}

func NewChatNotifier(sender MessageSender, chatID int64) *ChatNotifier {
	return &ChatNotifier{sender: sender, chatID: chatID}
}

func (n *ChatNotifier) RetroactiveRequested(ctx context.Context, professor *models.Professor, record *models.AttendanceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.sender.SendMessage(n.chatID, retroactiveMessage(professor, record))
}

func retroactiveMessage(professor *models.Professor, record *models.AttendanceRecord) string {
	var b strings.Builder
	b.WriteString("📋 Nova solicitação de presença retroativa\n\n")
	fmt.Fprintf(&b, "Professor: %s\n", professor.Name)
	if dept := professor.DepartmentName(); dept != "" {
		fmt.Fprintf(&b, "Departamento: %s\n", dept)
	}
	fmt.Fprintf(&b, "Data: %s\n", civildate.Format(record.Date))
	fmt.Fprintf(&b, "Justificativa: %s\n", record.Justification)
	fmt.Fprintf(&b, "\nSolicitação #%d aguardando aprovação.", record.ID)
	return b.String()
}
