package directory

import (
	"encoding/base64"
	"net/http"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
)

// EncodeImage renders an upload as a base64 data URL, the format the backend
// stores. A nil or empty upload encodes to "".
func EncodeImage(u *domain.Upload) string {
	if u == nil || len(u.Data) == 0 {
		return ""
	}
	ct := u.ContentType
	if ct == "" {
		ct = http.DetectContentType(u.Data)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(u.Data)
}
