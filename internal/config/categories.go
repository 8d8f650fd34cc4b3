package config

// CategoryWeights orders categories in help output.
var CategoryWeights = map[string]int{
	"🕯️ Information": 0,
	"🎲 Fun":          10,
	"🖼️ Images":      20,
	"📈 OSRS":         30,
	"📌 Pins":         40,
	"⚙️ Settings":    50,
	"🛠️ Maintenance": 60,
}
