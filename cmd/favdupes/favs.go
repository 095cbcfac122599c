package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"favdupes/pkg/config"
)

// addFetchFlags registers the flags every favorites read accepts
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("screen-name", "u", "", "whose likes to read (default: the authenticated user)")
	cmd.Flags().IntP("count", "n", 0, "number of posts to fetch, 1 to 200 (default from config)")
}

func newFavsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favs",
		Aliases: []string{"favorites", "likes"},
		Short:   "List liked posts",
		Long: `Fetch one page of liked posts (favorites/list) and print them.
Only a single request is made, so at most 200 posts are returned.`,
		Example: `  favdupes favs
  favdupes favs --screen-name jack --count 50 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			tweets, err := svc.Favorites(cmd.Context())
			if err != nil {
				return err
			}
			return a.term.RenderTweets(a.format, tweets)
		},
	}

	addFetchFlags(cmd)
	return cmd
}

func newTweetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tweets <screen_name>",
		Short: "List a user's own posts",
		Example: `  favdupes tweets jack
  favdupes tweets @jack --count 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			tweets, err := svc.Tweets(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.term.RenderTweets(a.format, tweets)
		},
	}

	cmd.Flags().IntP("count", "n", 0, "number of posts to fetch, 1 to "+strconv.Itoa(config.MaxCount))
	return cmd
}

func newURLsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Extract the URLs found in liked posts",
		Long: `Fetch liked posts and print every distinct link they contain, with the
IDs of the posts it appeared in. Expanded entity URLs are preferred over the
t.co short links in the text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			links, err := svc.URLs(cmd.Context())
			if err != nil {
				return err
			}
			return a.term.RenderLinks(a.format, links)
		},
	}

	addFetchFlags(cmd)
	return cmd
}
