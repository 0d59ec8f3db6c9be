package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "property" or "coercer").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.lookup(code)
	if p := data["property"]; p != "" {
		msg += ": " + p
	}
	return msg
}

func (t dictTranslator) lookup(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "configuration":
			return "スキーマ定義が不正です"
		case "required":
			return "必須プロパティが不足しています"
		case "invalid_type":
			return "型が不正です"
		case "parse_error":
			return "解析エラー"
		case "unknown_property":
			return "未知のプロパティです"
		}
	default: // "en"
		switch code {
		case "configuration":
			return "invalid schema configuration"
		case "required":
			return "required property missing"
		case "invalid_type":
			return "invalid type"
		case "parse_error":
			return "parse error"
		case "unknown_property":
			return "unknown property"
		}
	}
	return code
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
