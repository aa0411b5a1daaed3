// Package wish produces the short congratulatory message shown after a
// card is flipped.
package wish

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrEmptyWish = errors.New("generator returned an empty wish")
	ErrUpstream  = errors.New("upstream wish failure")
)

// DefaultFallback is shown whenever a wish cannot be generated.
const DefaultFallback = "Chúc mừng năm mới, lộc xuân tràn đầy!"

// Generator writes a wish for an envelope worth amount with the given label.
type Generator interface {
	Wish(ctx context.Context, amount int, label string) (string, error)
}

const systemInstruction = "Bạn là một ông đồ vui tính, chuyên viết lời chúc Tết cho năm Bính Ngọ 2026."

func buildPrompt(amount int, label string) string {
	return fmt.Sprintf(
		"Hãy viết một câu chúc Tết ngắn gọn (dưới 15 từ), hài hước và ý nghĩa cho năm Bính Ngọ 2026 "+
			"khi người chơi vừa lật được bao lì xì trị giá %s (%d đồng). "+
			"Hãy tập trung vào biểu tượng con Ngựa (Bính Ngọ).",
		label, amount,
	)
}
