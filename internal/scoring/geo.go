package scoring

import "strings"

const geoBonusPoints = 10

// africanLocations are matched as substrings of the normalized user location.
var africanLocations = normalizeAll([]string{
	// countries
	"algeria", "angola", "benin", "botswana", "burkina faso", "burundi", "cameroon",
	"cape verde", "cabo verde", "central african republic", "chad", "comoros", "congo",
	"côte d'ivoire", "cote d'ivoire", "ivory coast", "djibouti", "egypt", "equatorial guinea",
	"eritrea", "eswatini", "swaziland", "ethiopia", "gabon", "gambia", "ghana", "guinea",
	"kenya", "lesotho", "liberia", "libya", "madagascar", "malawi", "mali", "mauritania",
	"mauritius", "morocco", "mozambique", "namibia", "niger", "nigeria", "rwanda",
	"são tomé", "senegal", "seychelles", "sierra leone", "somalia", "south africa",
	"south sudan", "sudan", "tanzania", "togo", "tunisia", "uganda", "zambia", "zimbabwe",
	// cities
	"accra", "kumasi", "tamale", "takoradi", "lagos", "abuja", "ibadan", "port harcourt",
	"nairobi", "mombasa", "kampala", "kigali", "dar es salaam", "addis ababa", "cairo",
	"alexandria", "casablanca", "rabat", "tunis", "algiers", "dakar", "abidjan", "lomé",
	"cotonou", "douala", "yaoundé", "kinshasa", "luanda", "lusaka", "harare", "maputo",
	"johannesburg", "cape town", "durban", "pretoria", "windhoek", "gaborone", "freetown",
	"monrovia", "bamako", "ouagadougou", "niamey", "khartoum", "mogadishu",
})

// GeoBonus grants the sponsorship bonus to users located in Africa applying to
// jobs that sponsor visas.
func GeoBonus(userLocation string, visaSponsorship bool) int {
	if !visaSponsorship {
		return 0
	}
	location := Normalize(userLocation)
	if location == "" {
		return 0
	}
	for _, place := range africanLocations {
		if strings.Contains(location, place) {
			return geoBonusPoints
		}
	}
	return 0
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}
