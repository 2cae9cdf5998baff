package usecase

import "github.com/riskibarqy/dotmatchlens/internal/domain/message"

// messageAs unwraps a bus message delivered either as a value or as a pointer.
func messageAs[T message.Message](msg message.Message) (T, bool) {
	if v, ok := msg.(T); ok {
		return v, true
	}
	if p, ok := any(msg).(*T); ok && p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}
