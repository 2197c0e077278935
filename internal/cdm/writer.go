package cdm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Timestamps are written with explicit milliseconds; Parse accepts both
// fractional and whole-second forms.
const writeTimeLayout = "2006-01-02T15:04:05.000"

// Write emits the CDM in KVN format. Field values round-trip through Parse
// exactly, with timestamps kept to millisecond precision.
func Write(w io.Writer, msg *CDM) error {
	var b strings.Builder

	kv := func(key, value string) {
		fmt.Fprintf(&b, "%-23s = %s\n", key, value)
	}
	num := func(key string, v float64, unit string) {
		kv(key, strconv.FormatFloat(v, 'g', -1, 64)+" ["+unit+"]")
	}

	version := msg.Version
	if version == "" {
		version = "1.0"
	}
	kv("CCSDS_CDM_VERS", version)
	kv("CREATION_DATE", msg.CreationDate.UTC().Format(writeTimeLayout))
	kv("ORIGINATOR", msg.Originator)
	kv("MESSAGE_ID", msg.MessageID)
	kv("TCA", msg.TCA.UTC().Format(writeTimeLayout))
	num("MISS_DISTANCE", msg.MissDistanceKm, "km")
	num("RELATIVE_SPEED", msg.RelativeSpeedKmS, "km/s")
	if msg.CollisionProbability != nil {
		kv("COLLISION_PROBABILITY", strconv.FormatFloat(*msg.CollisionProbability, 'g', -1, 64))
	}

	writeObject(&b, "OBJECT1", msg.Object1)
	writeObject(&b, "OBJECT2", msg.Object2)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeObject(b *strings.Builder, label string, obj Object) {
	kv := func(key, value string) {
		fmt.Fprintf(b, "%-23s = %s\n", key, value)
	}
	num := func(key string, v float64, unit string) {
		kv(key, strconv.FormatFloat(v, 'g', -1, 64)+" ["+unit+"]")
	}

	kv("OBJECT", label)
	kv("OBJECT_DESIGNATOR", obj.Designator)
	kv("OBJECT_NAME", obj.Name)
	kv("INTERNATIONAL_DESIGNATOR", obj.InternationalDesignator)
	kv("EPHEMERIS_NAME", obj.EphemerisName)
	kv("COVARIANCE_METHOD", obj.CovarianceMethod)
	kv("MANEUVERABLE", obj.Maneuverable)

	num("X", obj.Position[0], "km")
	num("Y", obj.Position[1], "km")
	num("Z", obj.Position[2], "km")
	num("X_DOT", obj.Velocity[0], "km/s")
	num("Y_DOT", obj.Velocity[1], "km/s")
	num("Z_DOT", obj.Velocity[2], "km/s")

	if obj.Covariance == nil {
		return
	}
	for _, e := range covarianceKeys {
		unit := "km**2"
		switch {
		case e.row >= 3 && e.col >= 3:
			unit = "km**2/s**2"
		case e.row >= 3:
			unit = "km**2/s"
		}
		num(e.key, obj.Covariance.At(e.row, e.col), unit)
	}
}
