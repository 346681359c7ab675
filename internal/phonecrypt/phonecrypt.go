// Пакет phonecrypt — шифрование номера телефона перед сохранением в БД.
// Ядро сервиса видит только шифротекст; обратимое отображение детерминировано,
// чтобы работал поиск по уникальному индексу phone_number.
package phonecrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrDecrypt — шифротекст не удалось расшифровать (повреждён или чужой ключ).
var ErrDecrypt = errors.New("не удалось расшифровать номер телефона")

// Cipher — обратимое отображение открытый номер ⇄ шифротекст.
// Отображение обязано быть детерминированным: одинаковый номер всегда
// даёт одинаковый шифротекст.
type Cipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// New создаёт Cipher по режиму из конфигурации.
// aes — AES-256-GCM с детерминированным nonce; base64 — dev-заглушка
// без какой-либо криптографической защиты.
func New(mode, key string) (Cipher, error) {
	switch mode {
	case "aes":
		return NewAESCipher(key)
	case "base64":
		return Base64Cipher{}, nil
	default:
		return nil, fmt.Errorf("неизвестный режим шифрования: %q", mode)
	}
}

// AESCipher — AES-256-GCM. Nonce выводится из самого номера через HMAC,
// поэтому шифрование детерминировано; уникальность nonce обеспечена
// уникальностью номеров (один ключ — одно пространство номеров).
type AESCipher struct {
	gcm      cipher.AEAD
	nonceKey []byte
}

// NewAESCipher создаёт AES-шифратор. Строковый ключ хешируется
// SHA-256 до 32 байт (AES-256).
func NewAESCipher(key string) (*AESCipher, error) {
	if key == "" {
		return nil, fmt.Errorf("ключ шифрования не может быть пустым")
	}

	encKey := sha256.Sum256([]byte("enc:" + key))
	nonceKey := sha256.Sum256([]byte("nonce:" + key))

	block, err := aes.NewCipher(encKey[:])
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &AESCipher{gcm: gcm, nonceKey: nonceKey[:]}, nil
}

// Encrypt шифрует номер и возвращает base64url(nonce || ciphertext).
func (c *AESCipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("пустой номер телефона")
	}

	nonce := c.deriveNonce(plain)
	sealed := c.gcm.Seal(nil, nonce, []byte(plain), nil)

	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Decrypt восстанавливает номер из шифротекста.
func (c *AESCipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	ns := c.gcm.NonceSize()
	if len(raw) < ns {
		return "", ErrDecrypt
	}

	plain, err := c.gcm.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// deriveNonce выводит nonce из номера: первые NonceSize байт
// HMAC-SHA256(nonceKey, plain).
func (c *AESCipher) deriveNonce(plain string) []byte {
	mac := hmac.New(sha256.New, c.nonceKey)
	mac.Write([]byte(plain))
	return mac.Sum(nil)[:c.gcm.NonceSize()]
}

// Base64Cipher — заглушка для разработки, совместимая с историческими
// данными. Не защищает номер — включается только явно через конфигурацию.
type Base64Cipher struct{}

func (Base64Cipher) Encrypt(plain string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (Base64Cipher) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(raw), nil
}
