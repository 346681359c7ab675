// verifier.go — проверка кода подтверждения из SMS.
package service

import "context"

// CodeVerifier — внешний коллаборатор проверки кода подтверждения.
// Продакшен-реализация будет ходить в SMS-шлюз; сейчас используется
// статическая заглушка.
type CodeVerifier interface {
	// VerifyCode отвечает, корректен ли код для данного номера.
	VerifyCode(ctx context.Context, phone, code string) (bool, error)
}

// StaticCodeVerifier принимает единственный фиксированный код для всех
// номеров. Mock до подключения реального SMS-шлюза.
type StaticCodeVerifier struct {
	code string
}

// NewStaticCodeVerifier создаёт заглушку с фиксированным кодом.
func NewStaticCodeVerifier(code string) *StaticCodeVerifier {
	return &StaticCodeVerifier{code: code}
}

func (v *StaticCodeVerifier) VerifyCode(_ context.Context, _, code string) (bool, error) {
	return code == v.code, nil
}
