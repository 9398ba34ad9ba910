// Copyright (c) 2025 Arteus Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package i18n provides the en/ru interface strings the product ships.
package i18n

import (
	"golang.org/x/text/language"
)

// Strings holds every localized interface string.
type Strings struct {
	Tag language.Tag

	// Chat
	NewChat          string
	Conversations    string
	TypeMessage      string
	Send             string
	Thinking         string
	Scraping         string
	Stage1Heading    string
	Stage2Heading    string
	Stage3Heading    string
	FinalAnswer      string
	IndividualAnswers string
	RankingsHeading  string
	ModelColumn      string
	AverageColumn    string
	VotesColumn      string
	WaitingForModels string
	StreamFailed     string

	// Actions
	CopiedToClipboard string
	ExportedPDF       string
	DeleteConfirm     string
	Cancel            string
	Confirm           string

	// Login
	SignIn        string
	Email         string
	Password      string
	Name          string
	Register      string
	LoginFailed   string
	SignedInAs    string

	// Modals
	PickModels       string
	PickChairman     string
	Personalization  string
	CustomPrompt     string
	Templates        string
	SaveSettings     string
	LanguageSwitched string

	// Status bar hints
	HintSend    string
	HintCancel  string
	HintModels  string
	HintExport  string
	HintQuit    string
	HintHelp    string
}

var english = Strings{
	Tag:               language.English,
	NewChat:           "New chat",
	Conversations:     "Conversations",
	TypeMessage:       "Ask the council...",
	Send:              "Send",
	Thinking:          "Thinking",
	Scraping:          "Reading links",
	Stage1Heading:     "Stage 1 · Council answers",
	Stage2Heading:     "Stage 2 · Peer review",
	Stage3Heading:     "Stage 3 · Chairman",
	FinalAnswer:       "Final Answer",
	IndividualAnswers: "Individual Responses",
	RankingsHeading:   "Aggregate Rankings",
	ModelColumn:       "Model",
	AverageColumn:     "Average Rank",
	VotesColumn:       "Votes",
	WaitingForModels:  "Waiting for models",
	StreamFailed:      "The council stream failed",
	CopiedToClipboard: "Copied Markdown to clipboard",
	ExportedPDF:       "Saved PDF",
	DeleteConfirm:     "Delete this conversation? (y/n, a = all)",
	Cancel:            "Cancel",
	Confirm:           "Confirm",
	SignIn:            "Sign in to Arteus Council",
	Email:             "Email",
	Password:          "Password",
	Name:              "Name",
	Register:          "Register",
	LoginFailed:       "Sign-in failed",
	SignedInAs:        "Signed in as",
	PickModels:        "Council models",
	PickChairman:      "Chairman",
	Personalization:   "Personalization",
	CustomPrompt:      "Custom prompt",
	Templates:         "Templates",
	SaveSettings:      "Save",
	LanguageSwitched:  "Language: English",
	HintSend:          "send",
	HintCancel:        "cancel",
	HintModels:        "models",
	HintExport:        "export",
	HintQuit:          "quit",
	HintHelp:          "help",
}

var russian = Strings{
	Tag:               language.Russian,
	NewChat:           "Новый чат",
	Conversations:     "Диалоги",
	TypeMessage:       "Спросите совет...",
	Send:              "Отправить",
	Thinking:          "Думаю",
	Scraping:          "Читаю ссылки",
	Stage1Heading:     "Этап 1 · Ответы совета",
	Stage2Heading:     "Этап 2 · Взаимная оценка",
	Stage3Heading:     "Этап 3 · Председатель",
	FinalAnswer:       "Финальный ответ",
	IndividualAnswers: "Ответы моделей",
	RankingsHeading:   "Сводный рейтинг",
	ModelColumn:       "Модель",
	AverageColumn:     "Средний ранг",
	VotesColumn:       "Голоса",
	WaitingForModels:  "Ожидание моделей",
	StreamFailed:      "Поток совета прервался",
	CopiedToClipboard: "Markdown скопирован в буфер",
	ExportedPDF:       "PDF сохранён",
	DeleteConfirm:     "Удалить диалог? (y/n, a = все)",
	Cancel:            "Отмена",
	Confirm:           "Подтвердить",
	SignIn:            "Вход в Arteus Council",
	Email:             "Почта",
	Password:          "Пароль",
	Name:              "Имя",
	Register:          "Регистрация",
	LoginFailed:       "Не удалось войти",
	SignedInAs:        "Вы вошли как",
	PickModels:        "Модели совета",
	PickChairman:      "Председатель",
	Personalization:   "Персонализация",
	CustomPrompt:      "Свой промпт",
	Templates:         "Шаблоны",
	SaveSettings:      "Сохранить",
	LanguageSwitched:  "Язык: Русский",
	HintSend:          "отправить",
	HintCancel:        "отмена",
	HintModels:        "модели",
	HintExport:        "экспорт",
	HintQuit:          "выход",
	HintHelp:          "помощь",
}

var matcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.Russian,
})

// For returns the string table for a language code. Any tag that does not
// match Russian resolves to English, including malformed codes.
func For(code string) Strings {
	tag, err := language.Parse(code)
	if err != nil {
		return english
	}
	_, idx, _ := matcher.Match(tag)
	if idx == 1 {
		return russian
	}
	return english
}

// Code returns the config-level language code for a string table.
func (s Strings) Code() string {
	if s.Tag == language.Russian {
		return "ru"
	}
	return "en"
}

// Toggle returns the other shipped language.
func (s Strings) Toggle() Strings {
	if s.Tag == language.Russian {
		return english
	}
	return russian
}
