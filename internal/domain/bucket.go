package domain

// Bucket is one ordinal band of specimen counts, mapped to a single
// grayscale fill shared by both map variants and the legend.
type Bucket int

const (
	BucketZero Bucket = iota // exactly 0
	BucketLow                // 1–10
	BucketMid                // 11–100
	BucketHigh               // 101–1000
	BucketTop                // 1001 and up
)

// BucketFor maps a county count to its bucket. Bounds are inclusive on both
// ends; the top bucket is open-ended.
func BucketFor(count int) Bucket {
	switch {
	case count <= 0:
		return BucketZero
	case count <= 10:
		return BucketLow
	case count <= 100:
		return BucketMid
	case count <= 1000:
		return BucketHigh
	default:
		return BucketTop
	}
}

// Buckets lists all buckets in ascending order, for legend construction.
func Buckets() []Bucket {
	return []Bucket{BucketZero, BucketLow, BucketMid, BucketHigh, BucketTop}
}

// Color returns the hex fill for the bucket (the print grayscale ramp).
func (b Bucket) Color() string {
	switch b {
	case BucketZero:
		return "#ffffff"
	case BucketLow:
		return "#e7e8e9"
	case BucketMid:
		return "#bcbec0"
	case BucketHigh:
		return "#939598"
	default:
		return "#231f20"
	}
}

// Label returns the legend text for the bucket.
func (b Bucket) Label() string {
	switch b {
	case BucketZero:
		return "0"
	case BucketLow:
		return "1-10"
	case BucketMid:
		return "11-100"
	case BucketHigh:
		return "101-1000"
	default:
		return "1001+"
	}
}
