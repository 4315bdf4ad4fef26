// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON endpoints.
// CSV uploads are capped separately by csvutil.MaxUploadSize.
const (
	// MaxCredentialsBody caps sign-in and account creation requests.
	MaxCredentialsBody = 4 << 10 // 4 KB

	// MaxDonorBody caps a single donor create or update.
	MaxDonorBody = 16 << 10 // 16 KB

	// MaxBatchBody caps one mass-entry submission.
	MaxBatchBody = 2 << 20 // 2 MB

	// MaxNameBody caps small name-only payloads such as a new university.
	MaxNameBody = 4 << 10 // 4 KB
)
