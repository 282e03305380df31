package vocab

import "github.com/JonMunkholm/partsbin/internal/core"

func init() {
	core.RegisterVocabulary(core.Vocabulary{
		Key:   "de",
		Label: "Deutsch",
		Keys: map[core.Field]string{
			core.FieldID:       "id",
			core.FieldName:     "name",
			core.FieldCategory: "kategorie",
			core.FieldQuantity: "menge",
			core.FieldDrawer:   "fach",
			core.FieldValue:    "wert",
			core.FieldPackage:  "gehäuse",
			core.FieldNotes:    "notizen",
		},
	})
}
