package recovery

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// MessageKey identifies a user-facing outcome message.
type MessageKey string

const (
	MsgTokenSuccess       MessageKey = "recovery.token.success"
	MsgTokenFailure       MessageKey = "recovery.token.failure"
	MsgLicenseSuccess     MessageKey = "recovery.license.success"
	MsgLicenseDemoSuccess MessageKey = "recovery.license.demo_success"
	MsgLicenseFailure     MessageKey = "recovery.license.failure"
	MsgLicenseMissing     MessageKey = "recovery.license.missing"
	MsgAlreadyUnlocked    MessageKey = "recovery.already_unlocked"
	MsgPersistFailure     MessageKey = "recovery.persist_failure"
)

var translations = map[language.Tag]map[MessageKey]string{
	language.Spanish: {
		MsgTokenSuccess:       "¡Acceso desbloqueado! Ya puedes descargar tus automatizaciones.",
		MsgTokenFailure:       "El enlace de acceso no es válido o ha caducado. Usa tu clave de licencia.",
		MsgLicenseSuccess:     "Licencia verificada. Contenido desbloqueado.",
		MsgLicenseDemoSuccess: "No pudimos contactar con el servidor, pero tu clave es válida. Contenido desbloqueado.",
		MsgLicenseFailure:     "La licencia no es válida. Revisa la clave e inténtalo de nuevo.",
		MsgLicenseMissing:     "Introduce tu clave de licencia.",
		MsgAlreadyUnlocked:    "El contenido ya está desbloqueado.",
		MsgPersistFailure:     "Acceso verificado, pero no pudimos guardarlo en este dispositivo.",
	},
	language.English: {
		MsgTokenSuccess:       "Access unlocked! You can now download your automations.",
		MsgTokenFailure:       "The access link is invalid or has expired. Use your license key instead.",
		MsgLicenseSuccess:     "License verified. Content unlocked.",
		MsgLicenseDemoSuccess: "We could not reach the server, but your key looks valid. Content unlocked.",
		MsgLicenseFailure:     "The license is not valid. Check the key and try again.",
		MsgLicenseMissing:     "Enter your license key.",
		MsgAlreadyUnlocked:    "Content is already unlocked.",
		MsgPersistFailure:     "Access verified, but we could not save it on this device.",
	},
}

// supportedLanguages lists the catalog languages, default first.
var supportedLanguages = []language.Tag{language.Spanish, language.English}

var (
	messageCatalog = buildCatalog()
	languageMatch  = language.NewMatcher(supportedLanguages)
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for tag, msgs := range translations {
		for key, text := range msgs {
			if err := b.SetString(tag, string(key), text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Messages renders outcome messages in one language.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// NewMessages picks the closest supported language to lang (a BCP 47 tag or
// Accept-Language value). Unknown languages get Spanish.
func NewMessages(lang string) *Messages {
	tag := language.Spanish
	if prefs, _, err := language.ParseAcceptLanguage(lang); err == nil && len(prefs) > 0 {
		_, idx, _ := languageMatch.Match(prefs...)
		tag = supportedLanguages[idx]
	}
	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messageCatalog)),
	}
}

// Language returns the selected language.
func (m *Messages) Language() language.Tag {
	return m.tag
}

// Text returns the message for key.
func (m *Messages) Text(key MessageKey) string {
	return m.printer.Sprintf(message.Key(string(key), string(key)))
}
