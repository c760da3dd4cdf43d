// Package jwt — тесты валидатора JWT.
// RSA ключи генерируются в тестах, токены подписываются напрямую.
package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateTestKey генерирует RSA ключ для тестов.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "не удалось сгенерировать RSA ключ")
	return privateKey
}

// createTestValidator создаёт Validator напрямую с ключом (без загрузки из файла).
func createTestValidator(t *testing.T, publicKey *rsa.PublicKey) *Validator {
	t.Helper()

	return &Validator{
		publicKey: publicKey,
		issuer:    "test-issuer",
	}
}

// signTestToken подписывает токен с заданными claims.
func signTestToken(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err, "не удалось подписать тестовый токен")
	return signed
}

// testClaims возвращает валидные claims для оператора.
func testClaims(userID, role string) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
		UserID: userID,
		Role:   role,
	}
}

// writeKeyToTempFile записывает ключ во временный файл.
func writeKeyToTempFile(t *testing.T, keyData []byte, prefix string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), prefix+".pem")
	err := os.WriteFile(path, keyData, 0600)
	require.NoError(t, err, "не удалось записать ключ в файл")
	return path
}

// encodePublicKeyPKIX кодирует публичный ключ в формате PKIX.
func encodePublicKeyPKIX(t *testing.T, key *rsa.PublicKey) []byte {
	t.Helper()

	bytes, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err, "не удалось закодировать публичный ключ в PKIX")

	return pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: bytes,
	})
}

// ==================== Тесты NewValidator ====================

func TestNewValidator(t *testing.T) {
	key := generateTestKey(t)

	t.Run("создание с публичным ключом", func(t *testing.T) {
		publicPath := writeKeyToTempFile(t, encodePublicKeyPKIX(t, &key.PublicKey), "public")

		validator, err := NewValidator(Config{
			PublicKeyPath: publicPath,
			Issuer:        "test-issuer",
		})
		require.NoError(t, err, "ошибка создания Validator")
		require.NotNil(t, validator)
		assert.NotNil(t, validator.publicKey, "публичный ключ должен быть загружен")
	})

	t.Run("ошибка: публичный ключ не найден", func(t *testing.T) {
		validator, err := NewValidator(Config{
			PublicKeyPath: "/nonexistent/path/public.pem",
			Issuer:        "test-issuer",
		})
		assert.Error(t, err, "должна быть ошибка при отсутствии публичного ключа")
		assert.Nil(t, validator)
		assert.Contains(t, err.Error(), "ошибка загрузки публичного ключа")
	})
}

// ==================== Тесты ValidateToken ====================

func TestValidateToken(t *testing.T) {
	key := generateTestKey(t)
	validator := createTestValidator(t, &key.PublicKey)

	t.Run("валидный токен", func(t *testing.T) {
		tokenString := signTestToken(t, key, testClaims("user-123", "operator"))

		claims, err := validator.ValidateToken(tokenString)
		require.NoError(t, err, "ошибка валидации валидного токена")
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "operator", claims.Role)
		assert.Equal(t, "test-issuer", claims.Issuer)
	})

	t.Run("просроченный токен", func(t *testing.T) {
		expired := testClaims("user-123", "operator")
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		tokenString := signTestToken(t, key, expired)

		claims, err := validator.ValidateToken(tokenString)
		assert.Error(t, err, "должна быть ошибка для просроченного токена")
		assert.Nil(t, claims)
		assert.Contains(t, err.Error(), "ошибка валидации токена")
	})

	t.Run("невалидная подпись (другой ключ)", func(t *testing.T) {
		otherKey := generateTestKey(t)
		tokenString := signTestToken(t, otherKey, testClaims("user-123", "operator"))

		claims, err := validator.ValidateToken(tokenString)
		assert.Error(t, err, "должна быть ошибка для токена с другой подписью")
		assert.Nil(t, claims)
	})

	t.Run("неожиданный издатель", func(t *testing.T) {
		foreign := testClaims("user-123", "operator")
		foreign.Issuer = "another-issuer"
		tokenString := signTestToken(t, key, foreign)

		claims, err := validator.ValidateToken(tokenString)
		assert.Error(t, err, "должна быть ошибка для чужого издателя")
		assert.Nil(t, claims)
		assert.Contains(t, err.Error(), "неожиданный издатель")
	})

	t.Run("malformed токен", func(t *testing.T) {
		testCases := []struct {
			name  string
			token string
		}{
			{"пустой токен", ""},
			{"случайная строка", "not-a-valid-jwt-token"},
			{"неполный JWT", "eyJhbGciOiJSUzI1NiJ9"},
			{"невалидный base64", "not.valid.base64!!!"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				claims, err := validator.ValidateToken(tc.token)
				assert.Error(t, err, "должна быть ошибка для malformed токена")
				assert.Nil(t, claims)
			})
		}
	})

	t.Run("токен с неправильным алгоритмом (HS256)", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-123",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		tokenString, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		claims, err := validator.ValidateToken(tokenString)
		assert.Error(t, err, "должна быть ошибка для токена с неправильным алгоритмом")
		assert.Nil(t, claims)
	})
}

// ==================== Тесты LoadPublicKey ====================

func TestLoadPublicKey(t *testing.T) {
	key := generateTestKey(t)

	t.Run("загрузка PKIX формата", func(t *testing.T) {
		data := encodePublicKeyPKIX(t, &key.PublicKey)
		path := writeKeyToTempFile(t, data, "public-pkix")

		loadedKey, err := LoadPublicKey(path)
		require.NoError(t, err, "ошибка загрузки PKIX ключа")
		require.NotNil(t, loadedKey)
		assert.Equal(t, key.PublicKey.N, loadedKey.N, "модуль ключа должен совпадать")
	})

	t.Run("загрузка PKCS#1 формата", func(t *testing.T) {
		data := pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PUBLIC KEY",
			Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
		})
		path := writeKeyToTempFile(t, data, "public-pkcs1")

		loadedKey, err := LoadPublicKey(path)
		require.NoError(t, err, "ошибка загрузки PKCS#1 публичного ключа")
		require.NotNil(t, loadedKey)
		assert.Equal(t, key.PublicKey.N, loadedKey.N, "модуль ключа должен совпадать")
	})

	t.Run("ошибка: файл не существует", func(t *testing.T) {
		loadedKey, err := LoadPublicKey("/nonexistent/path/public.pem")
		assert.Error(t, err)
		assert.Nil(t, loadedKey)
		assert.Contains(t, err.Error(), "ошибка чтения файла")
	})

	t.Run("ошибка: невалидный PEM", func(t *testing.T) {
		path := writeKeyToTempFile(t, []byte("not a valid pem content"), "invalid-pem")

		loadedKey, err := LoadPublicKey(path)
		assert.Error(t, err)
		assert.Nil(t, loadedKey)
		assert.Contains(t, err.Error(), "не удалось декодировать PEM блок")
	})
}
