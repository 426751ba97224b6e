package tui

import "expensebot/internal/model"

// replyMsg delivers the engine's response for one sent message.
type replyMsg struct {
	response model.Response
}
