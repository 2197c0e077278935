// Package cdm reads and writes Conjunction Data Messages in the CCSDS
// 508.0-B-1 KVN format, the standard for exchanging conjunction assessment
// data between operators and agencies.
package cdm

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Object is one object's data within a CDM.
type Object struct {
	Designator              string // NORAD ID as string
	Name                    string
	InternationalDesignator string
	EphemerisName           string
	CovarianceMethod        string
	Maneuverable            string
	Position                [3]float64 // km
	Velocity                [3]float64 // km/s
	Covariance              *mat.SymDense // 6x6 RTN, nil when not provided
}

// CDM is a parsed Conjunction Data Message.
type CDM struct {
	Version              string
	CreationDate         time.Time
	Originator           string
	MessageID            string
	TCA                  time.Time
	MissDistanceKm       float64
	RelativeSpeedKmS     float64
	CollisionProbability *float64
	Object1              Object
	Object2              Object
}

// Keys of the lower-triangular RTN covariance, ordered row by row for the
// state vector (R, T, N, RDOT, TDOT, NDOT).
var covarianceKeys = []struct {
	row, col int
	key      string
}{
	{0, 0, "CR_R"},
	{1, 0, "CT_R"}, {1, 1, "CT_T"},
	{2, 0, "CN_R"}, {2, 1, "CN_T"}, {2, 2, "CN_N"},
	{3, 0, "CRDOT_R"}, {3, 1, "CRDOT_T"}, {3, 2, "CRDOT_N"}, {3, 3, "CRDOT_RDOT"},
	{4, 0, "CTDOT_R"}, {4, 1, "CTDOT_T"}, {4, 2, "CTDOT_N"}, {4, 3, "CTDOT_RDOT"}, {4, 4, "CTDOT_TDOT"},
	{5, 0, "CNDOT_R"}, {5, 1, "CNDOT_T"}, {5, 2, "CNDOT_N"}, {5, 3, "CNDOT_RDOT"}, {5, 4, "CNDOT_TDOT"}, {5, 5, "CNDOT_NDOT"},
}

var unitBrackets = regexp.MustCompile(`\s*\[.*?\]\s*`)

// Parse reads a CDM in KVN format. COMMENT lines are skipped and bracketed
// units after values are ignored. Missing required header fields are an
// error; an unparsable COLLISION_PROBABILITY is treated as absent.
func Parse(r io.Reader) (*CDM, error) {
	header := make(map[string]string)
	obj1 := make(map[string]string)
	obj2 := make(map[string]string)

	section := header
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "COMMENT") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(unitBrackets.ReplaceAllString(strings.TrimSpace(value), ""))

		if key == "OBJECT" {
			switch value {
			case "OBJECT1":
				section = obj1
			case "OBJECT2":
				section = obj2
			default:
				return nil, fmt.Errorf("cdm: unknown object section %q", value)
			}
			continue
		}
		section[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cdm: read: %w", err)
	}

	msg := &CDM{Version: "1.0"}
	if v, ok := header["CCSDS_CDM_VERS"]; ok {
		msg.Version = v
	}

	var err error
	if msg.CreationDate, err = parseTime(header, "CREATION_DATE"); err != nil {
		return nil, err
	}
	if msg.Originator, err = requireField(header, "ORIGINATOR"); err != nil {
		return nil, err
	}
	if msg.MessageID, err = requireField(header, "MESSAGE_ID"); err != nil {
		return nil, err
	}
	if msg.TCA, err = parseTime(header, "TCA"); err != nil {
		return nil, err
	}
	if msg.MissDistanceKm, err = parseFloatField(header, "MISS_DISTANCE"); err != nil {
		return nil, err
	}
	if msg.RelativeSpeedKmS, err = parseFloatField(header, "RELATIVE_SPEED"); err != nil {
		return nil, err
	}
	if v, ok := header["COLLISION_PROBABILITY"]; ok {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			msg.CollisionProbability = &p
		}
	}

	if msg.Object1, err = parseObject(obj1); err != nil {
		return nil, fmt.Errorf("cdm: OBJECT1: %w", err)
	}
	if msg.Object2, err = parseObject(obj2); err != nil {
		return nil, fmt.Errorf("cdm: OBJECT2: %w", err)
	}
	return msg, nil
}

func requireField(data map[string]string, key string) (string, error) {
	v, ok := data[key]
	if !ok {
		return "", fmt.Errorf("cdm: missing required header field %s", key)
	}
	return v, nil
}

func parseFloatField(data map[string]string, key string) (float64, error) {
	v, err := requireField(data, key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("cdm: invalid %s value %q", key, v)
	}
	return f, nil
}

const timeLayout = "2006-01-02T15:04:05"

func parseTime(data map[string]string, key string) (time.Time, error) {
	v, err := requireField(data, key)
	if err != nil {
		return time.Time{}, err
	}
	// time.Parse consumes an optional fractional second after the seconds
	// field, so one layout covers both CCSDS forms.
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("cdm: invalid %s timestamp %q", key, v)
	}
	return t.UTC(), nil
}

func parseObject(data map[string]string) (Object, error) {
	obj := Object{
		Designator:              data["OBJECT_DESIGNATOR"],
		Name:                    data["OBJECT_NAME"],
		InternationalDesignator: data["INTERNATIONAL_DESIGNATOR"],
		EphemerisName:           data["EPHEMERIS_NAME"],
		CovarianceMethod:        data["COVARIANCE_METHOD"],
		Maneuverable:            data["MANEUVERABLE"],
	}

	stateKeys := []string{"X", "Y", "Z", "X_DOT", "Y_DOT", "Z_DOT"}
	for i, key := range stateKeys {
		v, ok := data[key]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Object{}, fmt.Errorf("invalid %s value %q", key, v)
		}
		if i < 3 {
			obj.Position[i] = f
		} else {
			obj.Velocity[i-3] = f
		}
	}

	// No CR_R means no covariance block at all.
	if _, ok := data["CR_R"]; !ok {
		return obj, nil
	}
	cov := mat.NewSymDense(6, nil)
	for _, e := range covarianceKeys {
		v, ok := data[e.key]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Object{}, fmt.Errorf("invalid covariance element %s %q", e.key, v)
		}
		cov.SetSym(e.row, e.col, f)
	}
	obj.Covariance = cov
	return obj, nil
}
