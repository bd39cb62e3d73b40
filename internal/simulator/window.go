package simulator

import "github.com/vadiminshakov/papertrader/internal/domain"

// candleWindow is a ring buffer keeping the most recent candles.
type candleWindow struct {
	buf   []domain.Candle
	size  int
	start int
	count int
}

func newCandleWindow(capacity int) *candleWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &candleWindow{
		buf:  make([]domain.Candle, capacity),
		size: capacity,
	}
}

// push appends c, overwriting the oldest candle when full.
func (w *candleWindow) push(c domain.Candle) {
	if w.count < w.size {
		w.buf[(w.start+w.count)%w.size] = c
		w.count++
		return
	}
	w.buf[w.start] = c
	w.start = (w.start + 1) % w.size
}

// slice returns a chronological copy.
func (w *candleWindow) slice() []domain.Candle {
	out := make([]domain.Candle, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(w.start+i)%w.size]
	}
	return out
}

func (w *candleWindow) len() int {
	return w.count
}

func (w *candleWindow) clear() {
	w.start = 0
	w.count = 0
}
