package service

import (
	"context"
	"testing"

	"attendance-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	chatID int64
	text   string
}

func (s *fakeSender) SendMessage(chatID int64, text string) error {
	s.chatID = chatID
	s.text = text
	return nil
}

func TestChatNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewChatNotifier(sender, -42)

	professor := &models.Professor{
		Name:       "Ana Souza",
		Department: &models.Department{Name: "Física"},
	}
	record := &models.AttendanceRecord{
		ID:            7,
		Date:          date(2024, 3, 5),
		Justification: "forgot to check in",
	}

	require.NoError(t, n.RetroactiveRequested(context.Background(), professor, record))
	assert.Equal(t, int64(-42), sender.chatID)
	assert.Contains(t, sender.text, "Ana Souza")
	assert.Contains(t, sender.text, "Física")
	assert.Contains(t, sender.text, "05/03/2024")
	assert.Contains(t, sender.text, "forgot to check in")
	assert.Contains(t, sender.text, "#7")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, n.RetroactiveRequested(ctx, professor, record))
}
