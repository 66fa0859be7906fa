package collection

import "time"

var seedDate = time.Date(2025, time.August, 13, 0, 0, 0, 0, time.UTC)

// Seed returns the default poems installed when storage holds no collection.
// The excerpts are stored as first published and are not recomputed.
func Seed() []Poem {
	return []Poem{
		{
			ID:       "whispers-of-yesterday",
			Title:    "Whispers of Yesterday",
			Subtitle: "A reflection on memories that linger",
			Excerpt:  "In the silence of the night,\nWhere memories take flight,\nI hear the whispers of yesterday...",
			Content: `In the silence of the night,
Where memories take flight,
I hear the whispers of yesterday
Calling me to stay.

They speak of dreams once bright,
Of love that felt so right,
Of moments pure and true
That time has stolen through.

But in these whispered tales,
Where hope so often fails,
I find a gentle peace
That offers sweet release.

For though the dreams may break,
And hearts may sometimes ache,
The whispers of yesterday
Light tomorrow's way.

So I listen to their song,
Though the night may feel so long,
For in each whispered word
Is a truth that must be heard.`,
			DateCreated: seedDate,
			Tags:        []string{"memories", "hope", "reflection"},
		},
		{
			ID:       "fragments-of-hope",
			Title:    "Fragments of Hope",
			Subtitle: "Finding light in the pieces",
			Excerpt:  "Among the scattered pieces\nOf dreams that used to be,\nI search for fragments of hope...",
			Content: `Among the scattered pieces
Of dreams that used to be,
I search for fragments of hope
To set my spirit free.

Each shard reflects a memory,
Each fragment tells a tale
Of love that once was certain,
Of winds that filled my sail.

Though broken, they still shimmer
Like stars in darkest night,
These fragments of hope remind me
That dawn will bring new light.

I gather them with tender care,
These pieces of my heart,
For even in their broken state
They're still a work of art.

And when the wind of morning comes
To sweep away the pain,
These fragments of hope will teach me
How to dream again.`,
			DateCreated: seedDate,
			Tags:        []string{"hope", "healing", "resilience"},
		},
		{
			ID:       "the-dreamers-lament",
			Title:    "The Dreamer's Lament",
			Subtitle: "A meditation on dreams deferred",
			Excerpt:  "What becomes of dreams deferred?\nDo they wither like autumn leaves,\nOr dance in the wind of possibility?",
			Content: `What becomes of dreams deferred?
Do they wither like autumn leaves,
Or dance in the wind of possibility
While the dreamer silently grieves?

I have carried them so long,
These visions of what could be,
Through seasons of doubt and sorrow,
Across the vast uncertainty.

Some have faded into whispers,
Some have crumbled into dust,
But others burn eternal bright
In hearts that dare to trust.

For a dreamer never truly dies,
Though the world may break their wings,
In the quiet of the morning
Still their hopeful spirit sings.

So I lament not for the lost dreams,
But for the courage that might fade,
For in the dreaming lies the magic
Of the worlds that we have made.`,
			DateCreated: seedDate,
			Tags:        []string{"dreams", "perseverance", "courage"},
		},
	}
}
