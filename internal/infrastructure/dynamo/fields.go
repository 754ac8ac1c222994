package dynamo

// DynamoDB attribute names used in key and condition expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID       = "user_id"
	fieldEmail        = "email"
	fieldPhoneNumber  = "phone_number"
	fieldRefreshToken = "refresh_token"
	fieldUpdatedAt    = "updated_at"
	fieldEventID      = "event_id"
	fieldCreatedBy    = "created_by"
	fieldCode         = "code"
	fieldExpiresAt    = "expires_at"

	indexEmail        = "email-index"
	indexPhoneNumber  = "phone_number-index"
	indexRefreshToken = "refresh_token-index"
	indexCreatedBy    = "created_by-index"
)
