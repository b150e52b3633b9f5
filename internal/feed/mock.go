package feed

import (
	"context"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/search"
)

// MockPosts returns the demo dataset: two obvious scams and two benign
// posts, unscored. Used to exercise the scoring path without search
// credentials.
func MockPosts() []Post {
	return []Post{
		{
			ID:       "demo_scam_1",
			Username: "elon_giveaway_official",
			ImageURL: "https://encrypted-tbn0.gstatic.com/images?q=tbn:ANd9GcRlSP-QgB_POFLe9i3pdDlCabp4BYp0kfnIxA&s",
			Caption:  "URGENT: Doubling all BTC sent to my wallet! Link in bio! Spots sell out fast! 🚀🔴 #crypto #giveaway #tesla",
			Likes:    5200,
			Flag:     FlagPending,
		},
		{
			ID:       "demo_safe_1",
			Username: "tech_crunch",
			ImageURL: "https://images.unsplash.com/photo-1519389950473-47ba0277781c",
			Caption:  "Breaking: OpenAI releases GPT-5 preview. The new model is 10x faster and safer. #ai #tech #future",
			Likes:    15400,
			Flag:     FlagPending,
		},
		{
			ID:       "demo_scam_2",
			Username: "instagram_support_team",
			ImageURL: "https://placehold.co/600x600/orange/white?text=Acct+Locked",
			Caption:  "Your account has been locked due to suspicious activity. Click the link in our bio to verify your identity or your account will be deleted in 24 hours. 🔒",
			Likes:    45,
			Flag:     FlagPending,
		},
		{
			ID:       "demo_safe_2",
			Username: "travel_weekly",
			ImageURL: "https://images.unsplash.com/photo-1476514525535-07fb3b4ae5f1",
			Caption:  "Top 10 destinations to visit in Switzerland this winter. 🏔️🇨🇭 #travel #wanderlust",
			Likes:    8900,
			Flag:     FlagPending,
		},
	}
}

// BuildMock scores the demo dataset with the same per-post path as a
// live run.
func (a *Aggregator) BuildMock(ctx context.Context) *FeedResult {
	mock := MockPosts()

	posts := make([]Post, 0, len(mock))
	for _, p := range mock {
		posts = append(posts, a.scorePost(ctx, search.Hit{
			ID:       p.ID,
			Username: p.Username,
			ImageURL: p.ImageURL,
			Caption:  p.Caption,
			Likes:    p.Likes,
		}))
	}

	return &FeedResult{
		Geo:   "MOCK",
		Count: len(posts),
		Posts: posts,
	}
}
