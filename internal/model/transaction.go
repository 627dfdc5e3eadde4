package model

// Direction says which way a bank adjustment moves currency
type Direction string

const (
	// DirectionAdd moves currency from the bank to a player
	DirectionAdd Direction = "ADD"
	// DirectionDeduct moves currency from a player back to the bank
	DirectionDeduct Direction = "DEDUCT"
)

// ParseDirection validates a wire-format direction string
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionAdd:
		return DirectionAdd, nil
	case DirectionDeduct:
		return DirectionDeduct, nil
	default:
		return "", ErrInvalidDirection
	}
}
