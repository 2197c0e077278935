package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Parse reads NORAD TLE data from r and returns parsed entries. Both the
// 2-line and 3-line (name header) layouts are accepted and may be mixed.
// Malformed entries are skipped with a warning log.
func Parse(r io.Reader, logger *slog.Logger) ([]TLE, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var entries []TLE
	for i := 0; i < len(lines); {
		name := ""
		j := i
		if !strings.HasPrefix(lines[j], "1 ") && !strings.HasPrefix(lines[j], "2 ") {
			name = strings.TrimSpace(lines[j])
			j++
		}
		if j+1 >= len(lines) || !strings.HasPrefix(lines[j], "1 ") || !strings.HasPrefix(lines[j+1], "2 ") {
			logger.Warn("skipping malformed TLE entry", "line_index", i, "name", name)
			i++
			continue
		}

		entry, err := parseEntry(name, lines[j], lines[j+1])
		if err != nil {
			logger.Warn("skipping unparseable TLE entry", "line_index", i, "name", name, "error", err)
			i = j + 2
			continue
		}
		entries = append(entries, entry)
		i = j + 2
	}

	return entries, nil
}

// parseEntry decodes one element set from its two lines.
// Column positions follow the NORAD fixed-width layout.
func parseEntry(name, line1, line2 string) (TLE, error) {
	if len(line1) < 63 || len(line2) < 63 {
		return TLE{}, fmt.Errorf("line too short: %d/%d chars", len(line1), len(line2))
	}

	noradID, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return TLE{}, fmt.Errorf("invalid NORAD ID %q: %w", line1[2:7], err)
	}

	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return TLE{}, fmt.Errorf("invalid epoch: %w", err)
	}

	bstar, err := parseExpField(line1[53:61])
	if err != nil {
		return TLE{}, fmt.Errorf("invalid BSTAR %q: %w", line1[53:61], err)
	}

	incl, err := parseField(line2[8:16])
	if err != nil {
		return TLE{}, fmt.Errorf("invalid inclination: %w", err)
	}
	raan, err := parseField(line2[17:25])
	if err != nil {
		return TLE{}, fmt.Errorf("invalid RAAN: %w", err)
	}
	// Eccentricity is printed with the leading "0." dropped.
	ecc, err := parseField("0." + strings.TrimSpace(line2[26:33]))
	if err != nil {
		return TLE{}, fmt.Errorf("invalid eccentricity: %w", err)
	}
	argp, err := parseField(line2[34:42])
	if err != nil {
		return TLE{}, fmt.Errorf("invalid argument of perigee: %w", err)
	}
	ma, err := parseField(line2[43:51])
	if err != nil {
		return TLE{}, fmt.Errorf("invalid mean anomaly: %w", err)
	}
	mm, err := parseField(line2[52:63])
	if err != nil {
		return TLE{}, fmt.Errorf("invalid mean motion: %w", err)
	}

	return TLE{
		NORADID:          noradID,
		Name:             name,
		Epoch:            epoch,
		InclinationDeg:   incl,
		RAANDeg:          raan,
		Eccentricity:     ecc,
		ArgPerigeeDeg:    argp,
		MeanAnomalyDeg:   ma,
		MeanMotionRevDay: mm,
		BStar:            bstar,
		Line1:            line1,
		Line2:            line2,
	}, nil
}

func parseField(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// parseExpField decodes the TLE exponential notation used for BSTAR,
// e.g. " 30099-3" meaning 0.30099e-3.
func parseExpField(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("field too short: %q", s)
	}

	mantStr := s[:len(s)-2]
	expStr := s[len(s)-2:]

	mant, err := strconv.ParseFloat("0."+mantStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mantissa %q: %w", mantStr, err)
	}
	exp, err := strconv.Atoi(strings.TrimPrefix(expStr, "+"))
	if err != nil {
		return 0, fmt.Errorf("invalid exponent %q: %w", expStr, err)
	}

	return sign * mant * pow10(exp), nil
}

func pow10(n int) float64 {
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 10
	}
	for i := 0; i > n; i-- {
		v /= 10
	}
	return v
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// dayOfYear is 1-based: day 1 = Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
