package category

// Info describes a browsable category. Built-in categories carry a static
// item list per locale; custom categories (admin- or suggestion-created)
// carry only dynamic items.
type Info struct {
	Key    string `json:"key"`
	Emoji  string `json:"emoji"`
	NameEN string `json:"name_en"`
	NameHE string `json:"name_he"`
}

// DefaultLocale is the fallback when a locale has no static list.
const DefaultLocale = "en"

// Builtin returns the built-in categories in display order.
func Builtin() []Info {
	out := make([]Info, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup returns the built-in category for key.
func Lookup(key string) (Info, bool) {
	for _, c := range builtin {
		if c.Key == key {
			return c, true
		}
	}
	return Info{}, false
}

// Keys returns the built-in category keys in display order.
func Keys() []string {
	keys := make([]string, len(builtin))
	for i, c := range builtin {
		keys[i] = c.Key
	}
	return keys
}

// StaticItems returns the built-in item names for a category in the given
// locale, falling back to the default locale. Custom categories have no
// static items and return nil.
func StaticItems(key, locale string) []string {
	byLocale, ok := staticItems[key]
	if !ok {
		return nil
	}
	items, ok := byLocale[locale]
	if !ok {
		items = byLocale[DefaultLocale]
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}

var builtin = []Info{
	{Key: "produce", Emoji: "🥦", NameEN: "Fruit & Vegetables", NameHE: "ירקות ופירות"},
	{Key: "dairy", Emoji: "🧀", NameEN: "Dairy & Eggs", NameHE: "מוצרי חלב וביצים"},
	{Key: "meat_fish", Emoji: "🍗", NameEN: "Meat & Fish", NameHE: "בשר ודגים"},
	{Key: "bakery", Emoji: "🍞", NameEN: "Bakery", NameHE: "מאפים"},
	{Key: "pantry", Emoji: "🥫", NameEN: "Pantry", NameHE: "מזווה"},
	{Key: "condiments", Emoji: "🫙", NameEN: "Condiments & Spreads", NameHE: "רטבים וממרחים"},
	{Key: "frozen", Emoji: "🧊", NameEN: "Frozen", NameHE: "קפואים"},
	{Key: "beverages", Emoji: "🥤", NameEN: "Beverages", NameHE: "משקאות"},
	{Key: "snacks", Emoji: "🍿", NameEN: "Snacks", NameHE: "חטיפים"},
	{Key: "household", Emoji: "🧻", NameEN: "Household", NameHE: "מוצרי בית"},
	{Key: "personal_care", Emoji: "🧴", NameEN: "Personal Care", NameHE: "טיפוח"},
}

// Static item lists per category and locale. Hebrew lists are curated
// separately rather than translated one-to-one.
var staticItems = map[string]map[string][]string{
	"produce": {
		"en": {
			"Apples", "Bananas", "Oranges", "Lemons", "Avocado", "Tomatoes",
			"Cucumbers", "Potatoes", "Sweet potatoes", "Onions", "Garlic",
			"Carrots", "Bell peppers", "Lettuce", "Spinach", "Mushrooms",
			"Zucchini", "Eggplant", "Parsley", "Cilantro", "Dill",
		},
		"he": {
			"תפוחים", "בננות", "תפוזים", "לימונים", "אבוקדו", "עגבניות",
			"מלפפונים", "תפוחי אדמה", "בטטות", "בצל", "שום",
			"גזר", "פלפלים", "חסה", "תרד", "פטריות",
			"קישואים", "חצילים", "פטרוזיליה", "כוסברה", "שמיר",
		},
	},
	"dairy": {
		"en": {
			"Milk", "Eggs", "Butter", "Yellow cheese", "Cottage cheese",
			"Cream cheese", "White cheese", "Yogurt", "Sour cream",
			"Heavy cream", "Feta", "Mozzarella",
		},
		"he": {
			"חלב", "ביצים", "חמאה", "גבינה צהובה", "קוטג'",
			"גבינת שמנת", "גבינה לבנה", "יוגורט", "שמנת חמוצה",
			"שמנת מתוקה", "גבינה בולגרית", "מוצרלה",
		},
	},
	"meat_fish": {
		"en": {
			"Chicken breast", "Chicken thighs", "Whole chicken", "Ground beef",
			"Beef steak", "Turkey", "Salmon", "Tilapia", "Tuna", "Sausages",
			"Schnitzel", "Lamb",
		},
		"he": {
			"חזה עוף", "כרעיים", "עוף שלם", "בשר טחון",
			"סטייק בקר", "הודו", "סלמון", "אמנון", "טונה", "נקניקיות",
			"שניצל", "כבש",
		},
	},
	"bakery": {
		"en": {
			"Bread", "Challah", "Pita", "Rolls", "Bagels", "Tortillas",
			"Croissants", "Burekas", "Cake",
		},
		"he": {
			"לחם", "חלה", "פיתות", "לחמניות", "בייגלה", "טורטיות",
			"קרואסונים", "בורקס", "עוגה",
		},
	},
	"pantry": {
		"en": {
			"Rice", "Pasta", "Couscous", "Flour", "Sugar", "Salt", "Black pepper",
			"Olive oil", "Canola oil", "Vinegar", "Canned tomatoes", "Canned corn",
			"Chickpeas", "Lentils", "Beans", "Oatmeal", "Breadcrumbs", "Tomato paste",
		},
		"he": {
			"אורז", "פסטה", "קוסקוס", "קמח", "סוכר", "מלח", "פלפל שחור",
			"שמן זית", "שמן קנולה", "חומץ", "עגבניות משומרות", "תירס משומר",
			"חומוס יבש", "עדשים", "שעועית", "שיבולת שועל", "פירורי לחם", "רסק עגבניות",
		},
	},
	"condiments": {
		"en": {
			"Hummus", "Tahini", "Ketchup", "Mustard", "Mayonnaise", "Soy sauce",
			"Hot sauce", "Honey", "Jam", "Peanut butter", "Pesto", "Salsa",
		},
		"he": {
			"חומוס", "טחינה", "קטשופ", "חרדל", "מיונז", "רוטב סויה",
			"רוטב חריף", "דבש", "ריבה", "חמאת בוטנים", "פסטו", "סלסה",
		},
	},
	"frozen": {
		"en": {
			"Frozen vegetables", "Frozen peas", "Frozen pizza", "Ice cream",
			"Popsicles", "Frozen fish", "Frozen fruit", "Malawach",
		},
		"he": {
			"ירקות קפואים", "אפונה קפואה", "פיצה קפואה", "גלידה",
			"ארטיקים", "דג קפוא", "פירות קפואים", "מלאווח",
		},
	},
	"beverages": {
		"en": {
			"Water", "Sparkling water", "Orange juice", "Apple juice", "Coffee",
			"Tea", "Cola", "Lemonade", "Beer", "Wine",
		},
		"he": {
			"מים", "סודה", "מיץ תפוזים", "מיץ תפוחים", "קפה",
			"תה", "קולה", "לימונדה", "בירה", "יין",
		},
	},
	"snacks": {
		"en": {
			"Chips", "Crackers", "Cookies", "Popcorn", "Pretzels", "Chocolate",
			"Granola bars", "Nuts", "Dried fruit", "Bamba",
		},
		"he": {
			"צ'יפס", "קרקרים", "עוגיות", "פופקורן", "בייגלה מלוח", "שוקולד",
			"חטיפי גרנולה", "אגוזים", "פירות יבשים", "במבה",
		},
	},
	"household": {
		"en": {
			"Toilet paper", "Paper towels", "Trash bags", "Dish soap",
			"Laundry detergent", "Sponges", "Aluminum foil", "Plastic wrap",
			"Napkins", "Batteries", "Light bulbs",
		},
		"he": {
			"נייר טואלט", "מגבות נייר", "שקיות אשפה", "סבון כלים",
			"אבקת כביסה", "ספוגים", "נייר אלומיניום", "ניילון נצמד",
			"מפיות", "סוללות", "נורות",
		},
	},
	"personal_care": {
		"en": {
			"Shampoo", "Conditioner", "Soap", "Body wash", "Toothpaste",
			"Toothbrush", "Deodorant", "Lotion", "Razors", "Tissues",
		},
		"he": {
			"שמפו", "מרכך", "סבון", "סבון גוף", "משחת שיניים",
			"מברשת שיניים", "דאודורנט", "קרם גוף", "סכיני גילוח", "טישו",
		},
	},
}
