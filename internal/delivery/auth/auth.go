package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	errs "naval_exe/internal/errors"
	"naval_exe/internal/httpresponse"
	authUC "naval_exe/internal/usecase/auth"
	"naval_exe/internal/utils"
)

type AuthHandler struct {
	usecaseHandler *authUC.AuthUsecaseHandler
	log            *zap.SugaredLogger
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(users authUC.UserStorage, sessions authUC.SessionStorage, log *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		usecaseHandler: authUC.NewUserUsecaseHandler(users, sessions),
		log:            log,
	}
}

func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "sessionID",
		Value:    sessionID,
		Expires:  time.Now().Add(10 * time.Hour),
		Secure:   true,
		HttpOnly: true,
	})
}

func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.log.Error("Register: only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	requestBody, err := utils.ReadRequestBody(r)
	if err != nil {
		a.log.Error("Register: failed to read request body: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var registerData RegisterRequest
	if err := json.Unmarshal(requestBody, &registerData); err != nil {
		a.log.Error("Register: malformed JSON: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	sessionID, err := a.usecaseHandler.RegisterUser(r.Context(), registerData.Username, registerData.Email, registerData.Password)
	if err != nil {
		if errors.Is(err, errs.ErrUserExists) {
			a.log.Errorf("Register: user already exists: %s", registerData.Username)
			httpresponse.WriteErrorWithStatus(w, http.StatusConflict, "Пользователь с таким именем уже существует")
			return
		}
		a.log.Error("Register: internal error: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusInternalServerError, err.Error())
		return
	}

	setSessionCookie(w, sessionID)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, nil)
}

func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.log.Error("Login: only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	requestBody, err := utils.ReadRequestBody(r)
	if err != nil {
		a.log.Error("Login: failed to read request body: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var loginData LoginRequest
	if err := json.Unmarshal(requestBody, &loginData); err != nil {
		a.log.Error("Login: malformed JSON: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	sessionID, err := a.usecaseHandler.LoginUser(r.Context(), loginData.Username, loginData.Password)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUserNotFound):
			a.log.Errorf("Login: user not found: %s", loginData.Username)
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "Пользователь не найден")
			return
		case errors.Is(err, errs.ErrWrongPassword):
			a.log.Errorf("Login: wrong password for user: %s", loginData.Username)
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, "Неверный пароль")
			return
		default:
			a.log.Error("Login: internal error: ", err)
			httpresponse.WriteErrorWithStatus(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	setSessionCookie(w, sessionID)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, nil)
}

func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie("sessionID")
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			a.log.Warn("Logout: no cookie provided")
			httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, http.ErrNoCookie.Error())
			return
		}
		a.log.Error("Logout: error retrieving cookie: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.usecaseHandler.LogoutUser(r.Context(), sessionCookie.Value); err != nil {
		a.log.Errorf("Logout: failed to logout sessionID=%s: %v", sessionCookie.Value, err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, nil)
}

// Me отдаёт профиль текущего пользователя по cookie сессии.
func (a *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie("sessionID")
	if err != nil {
		a.log.Warn("Me: no sessionID cookie")
		httpresponse.WriteErrorWithStatus(w, http.StatusUnauthorized, "Не найдена cookie sessionID")
		return
	}

	authorized, currentUser := a.usecaseHandler.CheckAuthorized(r.Context(), sessionCookie.Value)
	if !authorized {
		a.log.Warn("Me: session not found or expired")
		httpresponse.WriteErrorWithStatus(w, http.StatusUnauthorized, "Сессия не найдена или истекла")
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, currentUser)
}

// GetUserID возвращает идентификатор пользователя из сессии.
// Если сессии нет, пишет ошибку в ответ и возвращает "".
func (a *AuthHandler) GetUserID(w http.ResponseWriter, r *http.Request) string {
	sessionCookie, err := r.Cookie("sessionID")
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			a.log.Warn("GetUserID: no sessionID cookie")
			httpresponse.WriteErrorWithStatus(w, http.StatusUnauthorized, "Не найдена cookie sessionID")
			return ""
		}
		a.log.Error("GetUserID: error retrieving cookie: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusBadRequest, err.Error())
		return ""
	}

	userID, err := a.usecaseHandler.GetUserIdFromSession(r.Context(), sessionCookie.Value)
	if err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			a.log.Warn("GetUserID: session not found or expired")
			httpresponse.WriteErrorWithStatus(w, http.StatusUnauthorized, "Сессия не найдена или истекла")
			return ""
		}
		a.log.Error("GetUserID: internal error: ", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusInternalServerError, err.Error())
		return ""
	}

	return userID
}
