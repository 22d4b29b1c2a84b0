package behance

const (
	// BaseURL is the site root. It is also the page loaded before token injection.
	BaseURL = "https://www.behance.net"

	// HomePage is loaded first in every run
	HomePage = BaseURL + "/"

	// GalleryPathFragment marks a direct project link
	GalleryPathFragment = "behance.net/gallery/"

	// MoodboardPathFragment marks a moodboard listing
	MoodboardPathFragment = "/moodboard/"

	// AuthTokenMarker must appear in a token for authentication to run
	AuthTokenMarker = "REAUTH_SCOPE"

	// SoftwareTag is written to EXIF Software when a JPEG had no EXIF block
	SoftwareTag = "BeDownloader"

	// SiteName is the site field of the embedded provenance record
	SiteName = "Behance"
)

// AuthLocalStorageKey is the localStorage key holding the IMS access token
const AuthLocalStorageKey = "adobeid_ims_access_token/BehanceWebSusi1/false/AdobeID," +
	"additional_info.roles,be.pro2.external_client,creative_cloud,creative_sdk,gnav," +
	"ims_cai.social.read,ims_cai.social.workplace.read,ims_cai.verifiedId.read,openid,sao.cce_private"

// Selectors used to read listing and project pages
var (
	// GridSelectors locate project grids on profile, likes and moodboard pages
	GridSelectors = []string{
		".ContentGrid-root-wzR",
		".ImageGrid-gridWrapper-TSx",
	}

	// ProjectSelectors locate the project cards inside a grid
	ProjectSelectors = []string{
		".ContentGrid-gridItem-XZq",
		".GridItem-imageWrap-Hp0",
	}

	// ProjectContentSelector appears once a project page has rendered its modules
	ProjectContentSelector = "#project-modules, .Project-projectModules-dnc, main img"

	// LockedBodyClass is set on project pages that require sign-in
	LockedBodyClass = "is-locked"
)

// Meta properties read from project pages
const (
	MetaTitle  = "og:title"
	MetaOwners = "og:owners"
)
