package vocab

import "github.com/JonMunkholm/partsbin/internal/core"

func init() {
	core.RegisterVocabulary(core.Vocabulary{
		Key:   "it",
		Label: "Italiano",
		Keys: map[core.Field]string{
			core.FieldID:       "id",
			core.FieldName:     "nome",
			core.FieldCategory: "categoria",
			core.FieldQuantity: "quantità",
			core.FieldDrawer:   "cassetto",
			core.FieldValue:    "valore",
			core.FieldPackage:  "formato",
			core.FieldNotes:    "note",
		},
	})
}
