package movie

import "math/rand/v2"

// Catalog is the built-in list of well-known titles used to seed an empty cache.
var Catalog = []string{
	"Before Sunrise", "Reservoir Dogs", "Groundhog Day", "Paddington", "Amélie", "Brokeback Mountain",
	"Donnie Darko", "Black Panther", "The Godfather", "The Shawshank Redemption", "The Empire Strikes Back",
	"Titanic", "Shiri", "The Lord of the Rings", "Mad Max 2", "Die Hard", "Den of Thieves",
	"Man with a Movie Camera", "Mirror", "Viridiana", "The Executioner", "Anatha Rathiriya",
	"Pura Handa Kaluwara", "Close Up", "The Commitments", "The Quiet Girl", "Giv'at Halfon Eina Ona",
	"Avanti Popolo", "Bicycle Thieves", "Heat", "Persona", "Rocky", "Superman", "The Dark Knight",
	"Himala", "Inception", "Avatar", "Pulp Fiction", "The Matrix", "Forrest Gump", "Jurassic Park",
}

// RandomTitles returns count distinct titles drawn without replacement from
// catalog. The catalog itself is not modified.
func RandomTitles(catalog []string, count int, r *rand.Rand) []string {
	shuffled := make([]string, len(catalog))
	copy(shuffled, catalog)

	shuffle := rand.Shuffle
	if r != nil {
		shuffle = r.Shuffle
	}
	shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count > len(shuffled) {
		count = len(shuffled)
	}
	if count < 0 {
		count = 0
	}
	return shuffled[:count]
}
