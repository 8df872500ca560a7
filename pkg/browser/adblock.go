package browser

// AdPatterns are the ad and consent-manager hosts aborted on every test page.
var AdPatterns = []string{
	"**/googleads**",
	"**/googlesyndication**",
	"**/doubleclick**",
	"**/adservice**",
	"**/fc.yahoo.com**",
	"**/fundingchoicesmessages**",
	"**/pagead**",
	"**/*.ads.**",
}

// BlockAds installs AdPatterns on p.
func BlockAds(p Page) error {
	return p.Block(AdPatterns)
}

// IsAdURL reports whether url would be aborted by BlockAds.
func IsAdURL(url string) bool {
	for _, pattern := range AdPatterns {
		if MatchURL(pattern, url) {
			return true
		}
	}
	return false
}
