package letters

import (
	"fmt"
	"strings"
	"sync"
)

// Word is one vocabulary example for a letter.
type Word struct {
	Word   string `json:"word"`
	Arabic string `json:"arabic"`
	Image  string `json:"image,omitempty"`
}

// Profile holds the static reference data for one English letter.
// Immutable at runtime; operator-supplied overrides live in Library.
type Profile struct {
	Capital  string `json:"capital"`
	Small    string `json:"small"`
	Sound    string `json:"sound"` // Arabic transliteration of the letter name
	Words    []Word `json:"words"`
	SoundURL string `json:"soundUrl,omitempty"`
	SongURL  string `json:"songUrl,omitempty"`
}

// Library is the full alphabet plus per-letter operator overrides
// (uploaded pronunciation recordings and word images). Overrides are
// session-scoped and held in memory only.
type Library struct {
	mu         sync.RWMutex
	recordings map[string]string   // letter -> recording URL
	images     map[string][]string // letter -> word image URLs, positional
}

func NewLibrary() *Library {
	return &Library{
		recordings: make(map[string]string),
		images:     make(map[string][]string),
	}
}

// Profile returns the profile for letter, falling back to "A" for
// unknown input the same way the lesson UI does.
func (l *Library) Profile(letter string) Profile {
	key := Normalize(letter)
	p, ok := alphabet[key]
	if !ok {
		p = alphabet["A"]
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if imgs, ok := l.images[key]; ok {
		words := make([]Word, len(p.Words))
		copy(words, p.Words)
		for i := range words {
			if i < len(imgs) && imgs[i] != "" {
				words[i].Image = imgs[i]
			}
		}
		p.Words = words
	}
	if rec, ok := l.recordings[key]; ok {
		p.SoundURL = rec
	}
	return p
}

// SetRecording installs an operator-recorded pronunciation for letter.
// An empty URL removes the override.
func (l *Library) SetRecording(letter, url string) error {
	key := Normalize(letter)
	if !Known(key) {
		return fmt.Errorf("letters: unknown letter %q", letter)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if url == "" {
		delete(l.recordings, key)
		return nil
	}
	l.recordings[key] = url
	return nil
}

// Recording returns the operator recording URL for letter, if any.
func (l *Library) Recording(letter string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	url, ok := l.recordings[Normalize(letter)]
	return url, ok
}

// SetWordImage overrides the illustration of the i-th word of letter.
func (l *Library) SetWordImage(letter string, index int, url string) error {
	key := Normalize(letter)
	p, ok := alphabet[key]
	if !ok {
		return fmt.Errorf("letters: unknown letter %q", letter)
	}
	if index < 0 || index >= len(p.Words) {
		return fmt.Errorf("letters: word index %d out of range for %s", index, key)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	imgs := l.images[key]
	if len(imgs) < len(p.Words) {
		grown := make([]string, len(p.Words))
		copy(grown, imgs)
		imgs = grown
	}
	imgs[index] = url
	l.images[key] = imgs
	return nil
}

// Normalize uppercases and trims a letter token to its canonical key.
func Normalize(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

// Known reports whether letter is one of the 26 English letters.
func Known(letter string) bool {
	_, ok := alphabet[Normalize(letter)]
	return ok
}

// All returns the alphabet keys in order.
func All() []string {
	out := make([]string, 26)
	for i := 0; i < 26; i++ {
		out[i] = string(rune('A' + i))
	}
	return out
}

var alphabet = map[string]Profile{
	"A": {Capital: "A", Small: "a", Sound: "إيه", Words: []Word{
		{Word: "Apple", Arabic: "تفاحة", Image: "https://images.unsplash.com/photo-1560806887-1e4cd0b6cbd6?w=400&h=300&fit=crop"},
		{Word: "Ant", Arabic: "نملة", Image: "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400&h=300&fit=crop"},
	}, SongURL: "https://www.youtube.com/embed/1dfXcN3VJxE"},
	"B": {Capital: "B", Small: "b", Sound: "بيه", Words: []Word{
		{Word: "Ball", Arabic: "كرة", Image: "https://images.unsplash.com/photo-1551698618-1dfe5d97d256?w=400&h=300&fit=crop"},
		{Word: "Book", Arabic: "كتاب", Image: "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400&h=300&fit=crop"},
	}, SongURL: "https://www.youtube.com/embed/lhgdG2rW5kk"},
	"C": {Capital: "C", Small: "c", Sound: "سيه", Words: []Word{
		{Word: "Cat", Arabic: "قطة", Image: "https://images.unsplash.com/photo-1514888286974-6c03e2ca1dba?w=400&h=300&fit=crop"},
		{Word: "Car", Arabic: "سيارة", Image: "https://images.unsplash.com/photo-1549317336-206569e8475c?w=400&h=300&fit=crop"},
	}, SongURL: "https://www.youtube.com/embed/QtJXl8h9JTI"},
	"D": {Capital: "D", Small: "d", Sound: "ديه", Words: []Word{
		{Word: "Dog", Arabic: "كلب", Image: "https://images.unsplash.com/photo-1552053831-71594a27632d?w=400&h=300&fit=crop"},
		{Word: "Door", Arabic: "باب", Image: "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=400&h=300&fit=crop"},
	}},
	"E": {Capital: "E", Small: "e", Sound: "إي", Words: []Word{
		{Word: "Elephant", Arabic: "فيل", Image: "https://images.unsplash.com/photo-1564760055775-d63b17a55c44?w=400&h=300&fit=crop"},
		{Word: "Egg", Arabic: "بيضة", Image: "https://images.unsplash.com/photo-1518569656558-1f25e69d93d3?w=400&h=300&fit=crop"},
	}},
	"F": {Capital: "F", Small: "f", Sound: "إف", Words: []Word{
		{Word: "Fish", Arabic: "سمكة", Image: "https://images.unsplash.com/photo-1544551763-46a013bb70d5?w=400&h=300&fit=crop"},
		{Word: "Flower", Arabic: "زهرة", Image: "https://images.unsplash.com/photo-1490750967868-88aa4486c946?w=400&h=300&fit=crop"},
	}},
	"G": {Capital: "G", Small: "g", Sound: "جيه", Words: []Word{
		{Word: "Giraffe", Arabic: "زرافة", Image: "https://images.unsplash.com/photo-1544966503-7cc4bb4b0b0b?w=400&h=300&fit=crop"},
		{Word: "Guitar", Arabic: "جيتار", Image: "https://images.unsplash.com/photo-1510915361894-db8b60106cb1?w=400&h=300&fit=crop"},
	}},
	"H": {Capital: "H", Small: "h", Sound: "إيتش", Words: []Word{
		{Word: "Hat", Arabic: "قبعة", Image: "https://images.unsplash.com/photo-1521369909029-2afed882baee?w=400&h=300&fit=crop"},
		{Word: "House", Arabic: "بيت", Image: "https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=400&h=300&fit=crop"},
	}},
	"I": {Capital: "I", Small: "i", Sound: "آي", Words: []Word{
		{Word: "Ice", Arabic: "ثلج", Image: "https://images.unsplash.com/photo-1551524164-6cf2ac531d82?w=400&h=300&fit=crop"},
		{Word: "Ice cream", Arabic: "آيس كريم", Image: "https://images.unsplash.com/photo-1563805042-7684c019e1cb?w=400&h=300&fit=crop"},
	}},
	"J": {Capital: "J", Small: "j", Sound: "جيه", Words: []Word{
		{Word: "Juice", Arabic: "عصير", Image: "https://images.unsplash.com/photo-1621506289937-a8e4df240d0b?w=400&h=300&fit=crop"},
		{Word: "Jam", Arabic: "مربى", Image: "https://images.unsplash.com/photo-1571115764595-644a1f56a55c?w=400&h=300&fit=crop"},
	}},
	"K": {Capital: "K", Small: "k", Sound: "كيه", Words: []Word{
		{Word: "Kite", Arabic: "طائرة ورقية", Image: "https://images.unsplash.com/photo-1558618047-3c8c76ca7d13?w=400&h=300&fit=crop"},
		{Word: "Key", Arabic: "مفتاح", Image: "https://images.unsplash.com/photo-1558618047-3c8c76ca7d13?w=400&h=300&fit=crop"},
	}},
	"L": {Capital: "L", Small: "l", Sound: "إل", Words: []Word{
		{Word: "Lion", Arabic: "أسد", Image: "https://images.unsplash.com/photo-1552410260-0fd9b577afa6?w=400&h=300&fit=crop"},
		{Word: "Leaf", Arabic: "ورقة", Image: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=400&h=300&fit=crop"},
	}},
	"M": {Capital: "M", Small: "m", Sound: "إم", Words: []Word{
		{Word: "Monkey", Arabic: "قرد", Image: "https://images.unsplash.com/photo-1540573133985-87b6da6d54a9?w=400&h=300&fit=crop"},
		{Word: "Moon", Arabic: "قمر", Image: "https://images.unsplash.com/photo-1446776877081-d282a0f896e2?w=400&h=300&fit=crop"},
	}},
	"N": {Capital: "N", Small: "n", Sound: "إن", Words: []Word{
		{Word: "Nest", Arabic: "عش", Image: "https://images.unsplash.com/photo-1444464666168-49d633b86797?w=400&h=300&fit=crop"},
		{Word: "Nose", Arabic: "أنف", Image: "https://images.unsplash.com/photo-1559757148-5c350d0d3c56?w=400&h=300&fit=crop"},
	}},
	"O": {Capital: "O", Small: "o", Sound: "أو", Words: []Word{
		{Word: "Orange", Arabic: "برتقال", Image: "https://images.unsplash.com/photo-1557800634-7bf3c73be389?w=400&h=300&fit=crop"},
		{Word: "Owl", Arabic: "بومة", Image: "https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=400&h=300&fit=crop"},
	}},
	"P": {Capital: "P", Small: "p", Sound: "بيه", Words: []Word{
		{Word: "Pen", Arabic: "قلم", Image: "https://images.unsplash.com/photo-1581833971358-2c8b550f87b3?w=400&h=300&fit=crop"},
		{Word: "Pig", Arabic: "خنزير", Image: "https://images.unsplash.com/photo-1548550023-7b4a4b5b5b5b?w=400&h=300&fit=crop"},
	}},
	"Q": {Capital: "Q", Small: "q", Sound: "كيو", Words: []Word{
		{Word: "Queen", Arabic: "ملكة", Image: "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400&h=300&fit=crop"},
		{Word: "Quiz", Arabic: "اختبار", Image: "https://images.unsplash.com/photo-1434030216411-0b793f4b4173?w=400&h=300&fit=crop"},
	}},
	"R": {Capital: "R", Small: "r", Sound: "آر", Words: []Word{
		{Word: "Rabbit", Arabic: "أرنب", Image: "https://images.unsplash.com/photo-1585110396000-c9ffd4e4b308?w=400&h=300&fit=crop"},
		{Word: "Rain", Arabic: "مطر", Image: "https://images.unsplash.com/photo-1519904981063-b0cf448d479e?w=400&h=300&fit=crop"},
	}},
	"S": {Capital: "S", Small: "s", Sound: "إس", Words: []Word{
		{Word: "Sun", Arabic: "شمس", Image: "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=400&h=300&fit=crop"},
		{Word: "Star", Arabic: "نجمة", Image: "https://images.unsplash.com/photo-1446776877081-d282a0f896e2?w=400&h=300&fit=crop"},
	}},
	"T": {Capital: "T", Small: "t", Sound: "تي", Words: []Word{
		{Word: "Tiger", Arabic: "نمر", Image: "https://images.unsplash.com/photo-1552410260-0fd9b577afa6?w=400&h=300&fit=crop"},
		{Word: "Tree", Arabic: "شجرة", Image: "https://images.unsplash.com/photo-1441974231531-c6227db76b6e?w=400&h=300&fit=crop"},
	}},
	"U": {Capital: "U", Small: "u", Sound: "يو", Words: []Word{
		{Word: "Umbrella", Arabic: "مظلة", Image: "https://images.unsplash.com/photo-1519904981063-b0cf448d479e?w=400&h=300&fit=crop"},
		{Word: "Unicorn", Arabic: "وحيد القرن", Image: "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400&h=300&fit=crop"},
	}},
	"V": {Capital: "V", Small: "v", Sound: "في", Words: []Word{
		{Word: "Van", Arabic: "سيارة نقل", Image: "https://images.unsplash.com/photo-1549317336-206569e8475c?w=400&h=300&fit=crop"},
		{Word: "Violin", Arabic: "كمان", Image: "https://images.unsplash.com/photo-1510915361894-db8b60106cb1?w=400&h=300&fit=crop"},
	}},
	"W": {Capital: "W", Small: "w", Sound: "دبليو", Words: []Word{
		{Word: "Water", Arabic: "ماء", Image: "https://images.unsplash.com/photo-1519904981063-b0cf448d479e?w=400&h=300&fit=crop"},
		{Word: "Watch", Arabic: "ساعة يد", Image: "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400&h=300&fit=crop"},
	}},
	"X": {Capital: "X", Small: "x", Sound: "إكس", Words: []Word{
		{Word: "Xylophone", Arabic: "زيـلوفون", Image: "https://images.unsplash.com/photo-1510915361894-db8b60106cb1?w=400&h=300&fit=crop"},
		{Word: "X-ray", Arabic: "أشعة سينية", Image: "https://images.unsplash.com/photo-1559757148-5c350d0d3c56?w=400&h=300&fit=crop"},
	}},
	"Y": {Capital: "Y", Small: "y", Sound: "واي", Words: []Word{
		{Word: "Yogurt", Arabic: "زبادي", Image: "https://images.unsplash.com/photo-1571115764595-644a1f56a55c?w=400&h=300&fit=crop"},
		{Word: "Yellow", Arabic: "أصفر", Image: "https://images.unsplash.com/photo-1557800634-7bf3c73be389?w=400&h=300&fit=crop"},
	}},
	"Z": {Capital: "Z", Small: "z", Sound: "زد", Words: []Word{
		{Word: "Zebra", Arabic: "حمار وحشي", Image: "https://images.unsplash.com/photo-1544966503-7cc4bb4b0b0b?w=400&h=300&fit=crop"},
		{Word: "Zoo", Arabic: "حديقة حيوان", Image: "https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=400&h=300&fit=crop"},
	}},
}
