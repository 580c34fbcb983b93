package transfer

type CaptionUpdate struct {
	Caption string `json:"caption" form:"caption"`
}

type CommentText struct {
	Text string `json:"text" form:"text"`
}

type UnsplashInteractionCreation struct {
	UnsplashID string `json:"unsplashId" form:"unsplashId"`
	Comment    string `json:"comment" form:"comment"`
}
