package handler

import (
	"fmt"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

// transferNotice builds the message shown to a transfer's recipient
func transferNotice(room *model.Room, senderID model.UserID, amount int64) string {
	senderName := "Someone"
	if sender := room.GetPlayer(senderID); sender != nil {
		senderName = sender.Username
	}
	return fmt.Sprintf("You received $%d from %s", amount, senderName)
}

// bankNotice builds the message shown to the player a bank adjustment targets
func bankNotice(amount int64, direction model.Direction) string {
	if direction == model.DirectionAdd {
		return fmt.Sprintf("The bank added $%d to your balance", amount)
	}
	return fmt.Sprintf("The bank deducted $%d from your balance", amount)
}
