package services

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// BackupCodeCount is how many single-use codes a setup call hands out.
const BackupCodeCount = 8

const qrImageSize = 256

// TwoFactorSetup is everything the client needs to finish enrolment: the raw
// secret for manual entry, a scannable QR image and the one-time backup codes.
type TwoFactorSetup struct {
	Secret      string
	QRCode      string // data:image/png;base64,... of the otpauth URI
	BackupCodes []string
}

// TwoFactorService generates TOTP enrolment material and checks codes.
// It never touches the database; persistence stays with the caller.
type TwoFactorService struct {
	issuer string
}

func NewTwoFactorService(issuer string) *TwoFactorService {
	return &TwoFactorService{issuer: issuer}
}

// GenerateSetup creates a fresh shared secret, its provisioning QR code and a
// new set of backup codes. Calling it again simply produces a replacement set.
func (s *TwoFactorService) GenerateSetup(email string) (*TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: email,
	})
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(key.String(), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, err
	}

	return &TwoFactorSetup{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		BackupCodes: GenerateBackupCodes(BackupCodeCount),
	}, nil
}

// ValidateCode checks a six-digit code against the secret for the current
// 30-second step, accepting one step of clock drift either way.
func (s *TwoFactorService) ValidateCode(secret, code string) bool {
	return totp.Validate(code, secret)
}

// GenerateBackupCodes returns n independent single-use codes: short,
// uppercase and typeable.
func GenerateBackupCodes(n int) []string {
	codes := make([]string, n)
	for i := range codes {
		codes[i] = strings.ToUpper(uuid.NewString()[:8])
	}
	return codes
}
