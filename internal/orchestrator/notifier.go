package orchestrator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice - всплывающее сообщение для UI
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// Notifier - UI-сторона, показывающая уведомления
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc позволяет передать функцию как Notifier
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier пишет уведомления в лог, используется по умолчанию
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	logger.Info("notice", "level", n.Level, "title", n.Title, "message", n.Message)
}

func (o *Orchestrator) success(title, message string) {
	o.notifier.Notify(Notice{Level: NoticeSuccess, Title: title, Message: message})
}

func (o *Orchestrator) info(title, message string) {
	o.notifier.Notify(Notice{Level: NoticeInfo, Title: title, Message: message})
}

func (o *Orchestrator) warning(title, message string) {
	o.notifier.Notify(Notice{Level: NoticeWarning, Title: title, Message: message})
}

var preconditionTitles = map[appErrors.ErrorCode]string{
	appErrors.CodeLicenseNotVerified: "Cannot Apply",
	appErrors.CodeValidationFailed:   "Invalid Input",
	appErrors.CodeNotAuthenticated:   "Not Logged In",
}

// notifyPrecondition - локальные проверки не трогают State.Error
func (o *Orchestrator) notifyPrecondition(err error) {
	title := "Not Allowed"
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		if t, ok := preconditionTitles[appErr.Code]; ok {
			title = t
		}
		message := appErr.Message
		if appErr.Code == appErrors.CodeValidationFailed && appErr.Details != nil {
			if fields, ok := appErr.Details.(map[string]string); ok {
				message = formatFields(fields)
			}
		}
		o.warning(title, message)
		return
	}
	o.warning(title, err.Error())
}

func formatFields(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, fields[name]))
	}
	return strings.Join(parts, "; ")
}
