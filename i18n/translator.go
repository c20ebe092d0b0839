package i18n

import "strings"

// Translator retrieves localized messages for issue codes.
// data provides optional values to embed in the message (for example, "key"
// or "class"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	return expand(t.template(code), data)
}

func (t dictTranslator) template(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "unknown_key":
			return "パラメータクラス '{class}' に未定義のパラメータ '{key}' です"
		case "invalid_type":
			return "型が不正です"
		case "reserved_name":
			return "予約された名前です"
		case "duplicate_key":
			return "キーが重複しています"
		case "required":
			return "必須パラメータが不足しています"
		case "parse_error":
			return "解析エラー"
		case "invalid_value":
			return "値が不正です"
		}
	default: // "en"
		switch code {
		case "unknown_key":
			return "unexpected parameter '{key}' in Params instance '{class}'"
		case "invalid_type":
			return "invalid type"
		case "reserved_name":
			return "reserved name"
		case "duplicate_key":
			return "duplicate key"
		case "required":
			return "required parameter missing"
		case "parse_error":
			return "parse error"
		case "invalid_value":
			return "invalid value"
		}
	}
	return code
}

func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
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
