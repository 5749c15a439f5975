package service

import "strings"

const (
	fallbackSubstitution = "Jika ingin mengganti bahan, coba gunakan bahan yang memiliki tekstur/kelembaban serupa. Contoh: yogurt tawar untuk sour cream, pisang matang untuk telur pada kue."
	fallbackCalories     = "Untuk estimasi kalori, periksa nilai kalori per porsi pada detail resep atau gunakan tabel nutrisi. Saya bisa bantu jika Anda beri bahan & jumlahnya."
	fallbackHowTo        = "Coba jelaskan langkah utama: siapkan bahan, panaskan wajan/oven, masak sesuai instruksi hingga matang. Untuk detail, sebutkan bagian yang ingin diketahui."
	fallbackGeneric      = "Maaf, saya belum terhubung ke AI eksternal. Coba tanyakan hal spesifik tentang resep atau bahan, mis. 'Bagaimana mengganti telur dalam kue?'"
)

// fallbackRules are checked in order; the first rule with a matching
// keyword answers.
var fallbackRules = []struct {
	keywords []string
	answer   string
}{
	{[]string{"ganti", "substitu"}, fallbackSubstitution},
	{[]string{"kalori"}, fallbackCalories},
	{[]string{"cara", "bagaimana", "langkah"}, fallbackHowTo},
}

// FallbackAnswer answers a cooking question without a model, by keyword.
func FallbackAnswer(question string) string {
	q := strings.ToLower(question)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.answer
			}
		}
	}
	return fallbackGeneric
}
