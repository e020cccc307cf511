package internal

import "time"

// Language identifies a translation language. An empty Code means auto-detect.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	AutoLanguage          = Language{Code: "", Name: "Auto"}
	DefaultTargetLanguage = Language{Code: "en", Name: "English"}
)

// Equal compares languages by code only; names may be localized differently
// between engines.
func (l Language) Equal(other Language) bool {
	return l.Code == other.Code
}

func (l Language) IsAuto() bool {
	return l.Code == ""
}

// HistoryItem is an accepted primary-engine translation.
type HistoryItem struct {
	ID                 string    `json:"id"`
	SourceLanguageCode string    `json:"source_language_code"`
	SourceLanguageName string    `json:"source_language_name"`
	TargetLanguageCode string    `json:"target_language_code"`
	TargetLanguageName string    `json:"target_language_name"`
	InsertedText       string    `json:"inserted_text"`
	TranslatedText     string    `json:"translated_text"`
	CreatedAt          time.Time `json:"created_at"`
}
