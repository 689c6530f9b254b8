package riot

import "fmt"

// Riot splits its API across two kinds of hosts: platform hosts (na1, euw1, ...)
// serve summoner and league data, while regional "realm" hosts (americas,
// europe, asia, sea) serve account and match data. Every platform maps to
// exactly one realm.
var platformToRealm = map[string]string{
	"na1": "americas",
	"br1": "americas",
	"la1": "americas",
	"la2": "americas",

	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",

	"kr":  "asia",
	"jp1": "asia",

	"oc1": "sea",
	"ph2": "sea",
	"sg2": "sea",
	"th2": "sea",
	"tw2": "sea",
	"vn2": "sea",
}

// Realm returns the regional routing value for a platform code.
func Realm(platform string) (string, error) {
	realm, ok := platformToRealm[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, platform)
	}
	return realm, nil
}

// IsValidPlatform reports whether the platform code is routable.
func IsValidPlatform(platform string) bool {
	_, ok := platformToRealm[platform]
	return ok
}

// Platforms returns every known platform code. Order is unspecified.
func Platforms() []string {
	out := make([]string, 0, len(platformToRealm))
	for p := range platformToRealm {
		out = append(out, p)
	}
	return out
}
