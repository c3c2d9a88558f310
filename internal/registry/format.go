package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DisplayTimeLayout is how timestamp values are printed on tiles.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// missingValue is shown for NULL columns.
const missingValue = "–"

// compassPoints splits the circle into 16 sections. The last entry repeats
// the first so that bearings rounding up to a full circle still resolve.
var compassPoints = [...]string{
	"Nord", "Nord-Nordost", "Nordost", "Ost-Nordost",
	"Ost", "Ost-Südost", "Südost", "Süd-Südost",
	"Süd", "Süd-Südwest", "Südwest", "West-Südwest",
	"West", "West-Nordwest", "Nordwest", "Nord-Nordwest",
	"Nord",
}

const compassSection = 360.0 / float64(len(compassPoints)-1)

// CompassPoint names the compass point nearest to a bearing in degrees.
// Halfway bearings round to the even section. 360° lands on the duplicate
// "Nord" entry instead of wrapping to index 0; both print the same name.
func CompassPoint(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return ""
	}
	if degrees < 0 || degrees > 360 {
		degrees = math.Mod(degrees, 360)
		if degrees < 0 {
			degrees += 360
		}
	}
	return compassPoints[int(math.RoundToEven(degrees/compassSection))]
}

func formatCompass(raw any) string {
	deg, ok := toFloat(raw)
	if !ok {
		return formatIdentity(raw)
	}
	name := CompassPoint(deg)
	if name == "" {
		return formatIdentity(raw)
	}
	return fmt.Sprintf("%s - %s", name, formatIdentity(raw))
}

func formatTimestamp(raw any) string {
	return "Zeitpunkt der Daten: " + formatIdentity(raw)
}

func formatIdentity(raw any) string {
	switch v := raw.(type) {
	case nil:
		return missingValue
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(DisplayTimeLayout)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
