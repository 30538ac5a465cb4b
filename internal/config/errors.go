package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrGetPostsFmt           = "Failed to get posts: %v"

	// Auth errors
	ErrCreateProviderFmt      = "Failed to create provider: %v"
	ErrAuthHeaderRequired     = "Authorization header required"
	ErrInvalidSignatureFormat = "Invalid signature format"
	ErrInvalidSignature       = "Invalid signature"
	ErrNotAuthenticated       = "Not authenticated"
	ErrInternalServerError    = "Internal server error"

	// Post errors
	ErrPostNotFound        = "Post not found"
	ErrDraftNotFound       = "Draft not found"
	ErrSlugRequired        = "Slug is required"
	ErrConfirmDelete       = "Deletion must be confirmed"
	ErrSavePost            = "Failed to save post"
	ErrFetchPosts          = "Failed to fetch posts"
	ErrRequestInProgress   = "Another request for this draft is still in progress"
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUserIDsMustBeArray  = "userIds must be an array"
	ErrUploadFileRequired  = "No file provided"
	ErrUploadFailed        = "Failed to upload image"
	ErrUploadDuplicateName = "A file with this name already exists"

	// Challenge errors
	ErrRefreshChallengeFmt = "Failed to refresh challenge"
)
