package utils

import (
	"campusgate/src/config"
	"campusgate/src/types"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"
)

var ErrInvalidCode = errors.New("invalid gate pass code")

func IsProd() bool {
	return config.API_ENV == string(types.Production)
}

// WithSuffix scopes a queue or topic name to the running environment.
// Production uses the bare name.
func WithSuffix(name string) string {
	if config.API_ENV == "" || IsProd() {
		return name
	}
	return fmt.Sprintf("%s_%s", name, config.API_ENV)
}

func ParseTime(value string) (time.Time, error) {
	return time.Parse(config.TIME_PARSE_FORMAT, value)
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(cipherText), nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(cipherText) < gcm.NonceSize() {
		return nil, ErrInvalidCode
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}

// EncodeGatePassCode produces the QR payload for a gate pass.
func EncodeGatePassCode(key []byte, id uint) (string, error) {
	payload, err := json.Marshal(map[string]uint{"gatePassId": id})
	if err != nil {
		return "", err
	}
	return EncryptMessage(key, string(payload))
}

func DecodeGatePassCode(key []byte, code string) (uint, error) {
	plain, err := DecryptMessage(key, code)
	if err != nil {
		return 0, ErrInvalidCode
	}
	id := gjson.Get(*plain, "gatePassId")
	if !id.Exists() || id.Uint() == 0 {
		return 0, ErrInvalidCode
	}
	return uint(id.Uint()), nil
}
