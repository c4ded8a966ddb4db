package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "kind").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "duplicate_key":
			return "フィールド名が重複しています"
		case "reserved_field":
			return withField("予約済みのフィールド名です", data)
		case "unknown_kind":
			return withKind("未知の型です", data)
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required property missing"
		case "duplicate_key":
			return "duplicate field name"
		case "reserved_field":
			return withField("field name is reserved", data)
		case "unknown_kind":
			return withKind("unknown type", data)
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

func withField(msg string, data map[string]string) string {
	if f := data["field"]; f != "" {
		return msg + ": " + f
	}
	return msg
}

func withKind(msg string, data map[string]string) string {
	if k := data["kind"]; k != "" {
		return msg + ": " + k
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
