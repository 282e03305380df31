package core

// SampleRecords returns the bootstrap inventory used when no saved state
// exists. Every call mints fresh ids.
func SampleRecords() []Record {
	return []Record{
		{ID: NewID(), Name: "Resistenza 10kΩ", Category: "Resistenze", Quantity: 120, Drawer: "A1", Value: "10kΩ", Package: "0805", Notes: "Pacco nuovo JLC"},
		{ID: NewID(), Name: "Condensatore 100nF", Category: "Condensatori", Quantity: 85, Drawer: "A2", Value: "0.1µF", Package: "0603", Notes: "Ceramico X7R"},
		{ID: NewID(), Name: "ESP32-WROOM-32", Category: "MCU/Module", Quantity: 6, Drawer: "B3", Package: "Module", Notes: "DevKit V1"},
		{ID: NewID(), Name: "LED 5mm Rosso", Category: "LED", Quantity: 150, Drawer: "C1", Value: "2.0V", Package: "THT", Notes: "Diffusi"},
	}
}
