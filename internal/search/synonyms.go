package search

// DefaultSynonyms is the hand-curated bilingual grocery vocabulary used to
// broaden product and shop searches. It bridges English terms and common
// local-language names so a query in either vocabulary surfaces rows indexed
// under the other.
//
// The mapping is intentionally neither symmetric nor transitive: entries were
// authored per term, and expansion is a single fan-out, never a closure over
// the dictionary. Preserve that shape when editing; "fixing" it changes
// search result sets in production.
var DefaultSynonyms = Dictionary{
	// Vegetables
	"potato":      {"alu", "aloo", "batata"},
	"alu":         {"potato", "aloo", "batata"},
	"aloo":        {"potato", "alu", "batata"},
	"batata":      {"potato", "alu", "aloo"},
	"onion":       {"pyaz", "kanda", "dungri"},
	"pyaz":        {"onion", "kanda"},
	"kanda":       {"onion", "pyaz"},
	"tomato":      {"tamatar"},
	"tamatar":     {"tomato"},
	"chili":       {"mirchi", "pepper", "green chili", "hari mirch", "lal mirch"},
	"mirchi":      {"chili", "pepper", "green chili", "hari mirch", "lal mirch"},
	"garlic":      {"lahsun", "lasun"},
	"lahsun":      {"garlic"},
	"ginger":      {"adrak"},
	"adrak":       {"ginger"},
	"brinjal":     {"baingan", "eggplant"},
	"baingan":     {"brinjal"},
	"okra":        {"bhindi", "ladies finger"},
	"bhindi":      {"okra"},
	"cabbage":     {"patta gobhi", "gobhi"},
	"cauliflower": {"phool gobhi", "gobhi"},
	"gobhi":       {"cabbage", "cauliflower"},
	"spinach":     {"palak"},
	"palak":       {"spinach"},

	// Fruits
	"apple":  {"seb"},
	"seb":    {"apple"},
	"banana": {"kela"},
	"kela":   {"banana"},
	"mango":  {"aam"},
	"aam":    {"mango"},
	"grapes": {"angoor"},
	"angoor": {"grapes"},

	// Staples (grains, flours, pulses)
	"rice":   {"chawal", "basmati", "paddy"},
	"chawal": {"rice", "basmati"},
	"wheat":  {"gehu", "kanak"},
	"gehu":   {"wheat"},
	"flour":  {"atta", "maida", "besan"},
	"atta":   {"flour", "wheat flour"},
	"maida":  {"refined flour", "flour"},
	"besan":  {"gram flour", "flour"},
	"pulse":  {"dal"},
	"dal":    {"pulse", "toor", "moong", "urad", "chana", "masoor", "lentil"},
	"lentil": {"dal"},
	"toor":   {"arhar", "dal"},
	"chana":  {"gram", "chickpeas", "dal"},

	// Spices, oil, condiments
	"salt":      {"namak"},
	"namak":     {"salt"},
	"sugar":     {"chini", "shakkar", "jaggery", "gud"},
	"chini":     {"sugar"},
	"gud":       {"jaggery"},
	"oil":       {"tel", "refined", "sarso", "mustard", "sunflower"},
	"tel":       {"oil"},
	"turmeric":  {"haldi"},
	"haldi":     {"turmeric"},
	"cumin":     {"jeera"},
	"jeera":     {"cumin"},
	"coriander": {"dhania"},
	"dhania":    {"coriander"},
	"tea":       {"chai", "patti"},
	"chai":      {"tea"},

	// Dairy and others
	"milk":   {"doodh", "dairy"},
	"doodh":  {"milk"},
	"curd":   {"dahi", "yogurt"},
	"dahi":   {"curd"},
	"butter": {"makhan"},
	"ghee":   {"clarified butter"},
	"paneer": {"cottage cheese"},
	"egg":    {"anda"},
	"eggs":   {"anda"},
	"anda":   {"egg"},
	"bread":  {"pav"},
}
