// Package payments renders the checkout payment artifact. There is no
// gateway; payment happens out of band when the customer scans the code
// with a banking app.
package payments

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/scrimteamx/Card-Ghar/internal/domain"
)

// ErrQRInvalidAmount rejects non-positive payment amounts.
var ErrQRInvalidAmount = errors.New("payments: invalid amount")

const qrImageSize = 256

// QRGenerator produces payment QR codes for the payment step.
type QRGenerator struct {
	size int
}

// NewQRGenerator constructs a generator with the default image size.
func NewQRGenerator() *QRGenerator {
	return &QRGenerator{size: qrImageSize}
}

// Payload returns the string encoded into the payment code.
func Payload(amount int, region domain.Region) string {
	return fmt.Sprintf("PAY_%s_%d", region.Currency(), amount)
}

// PaymentPNG renders a PNG QR code for the final amount. A zero amount is
// valid; a fully discounted purchase still confirms through the same step.
func (g *QRGenerator) PaymentPNG(amount int, region domain.Region) ([]byte, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrQRInvalidAmount, amount)
	}
	png, err := qrcode.Encode(Payload(amount, region), qrcode.High, g.size)
	if err != nil {
		return nil, fmt.Errorf("payments: encode qr: %w", err)
	}
	return png, nil
}
