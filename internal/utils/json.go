package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Тела запросов маленькие (координата, имя партии), мегабайта хватает всем.
const maxBodySize = 1 << 20

// DecodeJSONRequest читает тело запроса в dst. Неизвестные поля — ошибка,
// чтобы опечатка в имени поля не превращалась в молчаливый ноль.
func DecodeJSONRequest(r *http.Request, dst any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func ReadRequestBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}
