package auth

import (
	"fmt"
	"io"
	"strings"

	"bedownloader/pkg/behance"
)

// ShowTokenExtractionGuide explains how to copy the session token out of a
// signed-in browser
func ShowTokenExtractionGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "BEHANCE SESSION TOKEN")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Some projects are only visible when signed in. bedownloader can reuse")
	fmt.Fprintln(w, "the session of your browser by injecting its access token.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Sign in at "+behance.BaseURL)
	fmt.Fprintln(w, "STEP 2: Open Developer Tools (F12, or Cmd+Option+I on Mac)")
	fmt.Fprintln(w, "STEP 3: Application tab (Storage in Firefox) -> Local Storage -> "+behance.BaseURL)
	fmt.Fprintln(w, "STEP 4: Find the key starting with")
	fmt.Fprintln(w, "        adobeid_ims_access_token/BehanceWebSusi1/")
	fmt.Fprintln(w, "STEP 5: Copy its whole value. It must contain "+behance.AuthTokenMarker+".")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The token grants access to your account. Keep it private; it is stored")
	fmt.Fprintln(w, "in the system keychain or an encrypted file, never in plain text.")
	fmt.Fprintln(w, strings.Repeat("=", 80))
}
