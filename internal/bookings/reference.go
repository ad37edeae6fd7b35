package bookings

import (
	"crypto/rand"
	"math/big"
	"time"
)

const refLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateBookingReference returns BKG-YYYYMMDD-XXXXXX
func generateBookingReference(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(refLetters))))
		if err != nil {
			n = big.NewInt(now.UnixNano() % int64(len(refLetters)))
		}
		suffix[i] = refLetters[n.Int64()]
	}
	return "BKG-" + now.Format("20060102") + "-" + string(suffix)
}
