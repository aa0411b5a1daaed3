package wish

import "context"

var cannedWishes = []string{
	"Mã đáo thành công, tiền vô như nước!",
	"Ngựa phi nước đại, lộc về đầy nhà!",
	"Năm Ngọ phi nhanh, túi tiền căng phồng!",
	"Vạn sự như ý, an khang thịnh vượng!",
}

// Static picks a canned wish without calling any service. It is used
// when no model is configured.
type Static struct {
	wishes []string
}

func NewStatic(wishes ...string) *Static {
	if len(wishes) == 0 {
		wishes = cannedWishes
	}
	return &Static{wishes: wishes}
}

// Wish is deterministic in amount so the same envelope gets the same line.
func (s *Static) Wish(_ context.Context, amount int, _ string) (string, error) {
	if amount < 0 {
		amount = -amount
	}
	return s.wishes[amount%len(s.wishes)], nil
}
