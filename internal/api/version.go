package api

// Known backend contract versions. The same logical operation has shipped
// with more than one response shape; services select one normalisation
// adapter per version, all converging on the stable domain types.
const (
	VersionV1 = "v1" // inline auth payloads, compact products, bare order arrays
	VersionV2 = "v2" // token+profile auth, full products, paginated orders
)
