package phonecrypt

import (
	"errors"
	"testing"
)

func TestNew_ModeSelection(t *testing.T) {
	if _, err := New("aes", "key"); err != nil {
		t.Errorf("New(aes) ошибка: %v", err)
	}
	if _, err := New("base64", ""); err != nil {
		t.Errorf("New(base64) ошибка: %v", err)
	}
	if _, err := New("rot13", "key"); err == nil {
		t.Error("New() с неизвестным режимом должен вернуть ошибку")
	}
	if _, err := New("aes", ""); err == nil {
		t.Error("New(aes) с пустым ключом должен вернуть ошибку")
	}
}

func TestAESCipher_RoundTrip(t *testing.T) {
	c, err := NewAESCipher("test-key")
	if err != nil {
		t.Fatalf("NewAESCipher() ошибка: %v", err)
	}

	phones := []string{"+79991234567", "+8613800000000", "+12025550123"}
	for _, phone := range phones {
		enc, err := c.Encrypt(phone)
		if err != nil {
			t.Fatalf("Encrypt(%q) ошибка: %v", phone, err)
		}
		if enc == phone {
			t.Errorf("Encrypt(%q) вернул открытый текст", phone)
		}

		dec, err := c.Decrypt(enc)
		if err != nil {
			t.Fatalf("Decrypt() ошибка: %v", err)
		}
		if dec != phone {
			t.Errorf("Decrypt() = %q, хотели %q", dec, phone)
		}
	}
}

// TestAESCipher_Deterministic — одинаковый номер всегда даёт одинаковый
// шифротекст: на этом держится уникальный индекс phone_number.
func TestAESCipher_Deterministic(t *testing.T) {
	c, err := NewAESCipher("test-key")
	if err != nil {
		t.Fatalf("NewAESCipher() ошибка: %v", err)
	}

	a, err := c.Encrypt("+79991234567")
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}
	b, err := c.Encrypt("+79991234567")
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}
	if a != b {
		t.Errorf("шифрование недетерминировано: %q != %q", a, b)
	}

	other, err := c.Encrypt("+79991234568")
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}
	if other == a {
		t.Error("разные номера дали одинаковый шифротекст")
	}
}

func TestAESCipher_WrongKey(t *testing.T) {
	c1, err := NewAESCipher("key-one")
	if err != nil {
		t.Fatalf("NewAESCipher() ошибка: %v", err)
	}
	c2, err := NewAESCipher("key-two")
	if err != nil {
		t.Fatalf("NewAESCipher() ошибка: %v", err)
	}

	enc, err := c1.Encrypt("+79991234567")
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}

	if _, err := c2.Decrypt(enc); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() чужим ключом: ошибка = %v, хотели ErrDecrypt", err)
	}
}

func TestAESCipher_TamperedCiphertext(t *testing.T) {
	c, err := NewAESCipher("test-key")
	if err != nil {
		t.Fatalf("NewAESCipher() ошибка: %v", err)
	}

	enc, err := c.Encrypt("+79991234567")
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}

	b := []byte(enc)
	if b[len(b)-1] == 'A' {
		b[len(b)-1] = 'B'
	} else {
		b[len(b)-1] = 'A'
	}
	if _, err := c.Decrypt(string(b)); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() испорченного шифротекста: ошибка = %v, хотели ErrDecrypt", err)
	}

	for _, garbage := range []string{"", "!!!", "short"} {
		if _, err := c.Decrypt(garbage); !errors.Is(err, ErrDecrypt) {
			t.Errorf("Decrypt(%q): ошибка = %v, хотели ErrDecrypt", garbage, err)
		}
	}
}

func TestBase64Cipher_RoundTrip(t *testing.T) {
	c := Base64Cipher{}

	enc, err := c.Encrypt("+8613800000000")
	if err != nil {
		t.Fatalf("Encrypt() ошибка: %v", err)
	}
	// Историческая совместимость: та же кодировка, что и у старого бэкенда
	if enc != "Kzg2MTM4MDAwMDAwMDA=" {
		t.Errorf("Encrypt() = %q, хотели %q", enc, "Kzg2MTM4MDAwMDAwMDA=")
	}

	dec, err := c.Decrypt(enc)
	if err != nil {
		t.Fatalf("Decrypt() ошибка: %v", err)
	}
	if dec != "+8613800000000" {
		t.Errorf("Decrypt() = %q, хотели %q", dec, "+8613800000000")
	}

	if _, err := c.Decrypt("%%%"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() мусора: ошибка = %v, хотели ErrDecrypt", err)
	}
}
