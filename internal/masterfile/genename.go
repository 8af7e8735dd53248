package masterfile

import (
	"regexp"
	"strings"
)

var (
	copyNumberRe = regexp.MustCompile(`_\d+`)
	signalRe     = regexp.MustCompile(`^Sig-(.+)$`)
	exonRe       = regexp.MustCompile(`-E\d+(-\S+)?$`)
	intronRe     = regexp.MustCompile(`-I\d+(-\S+)?$`)
	trnaRe       = regexp.MustCompile(`^trn([\w|?]*)\([\w|?]*\)`)
)

// NormalizeGeneName renormalizes the name of a gene record and returns the
// kind it should carry:
//
//	cox1_2          -> G cox1
//	Sig-cox1        -> S cox1
//	cox1-E2         -> E cox1
//	cox1_2-I3-orf232 -> I cox1
//	trnM(cau)       -> G M
//
// Records of any other kind are returned unchanged.
func NormalizeGeneName(kind Kind, name string) (Kind, string) {
	if kind != KindGene {
		return kind, name
	}

	name = copyNumberRe.ReplaceAllString(name, "")

	switch {
	case signalRe.MatchString(name):
		return KindSignal, signalRe.FindStringSubmatch(name)[1]
	case exonRe.MatchString(name):
		return KindExon, beforeDash(name)
	case intronRe.MatchString(name):
		return KindIntron, beforeDash(name)
	case trnaRe.MatchString(name):
		return KindGene, trnaRe.FindStringSubmatch(name)[1]
	}
	return kind, name
}

// beforeDash returns the part of name before its first '-', or name when
// that part would be empty.
func beforeDash(name string) string {
	if head, _, _ := strings.Cut(name, "-"); head != "" {
		return head
	}
	return name
}
