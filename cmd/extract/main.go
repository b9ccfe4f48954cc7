// Command extract runs item extraction over stored conversations from
// the command line, for offline or scheduled use.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"back/config"
	"back/services"
	"back/store"
)

func main() {
	conversationID := flag.Int64("conversation", 0, "conversation id to extract from (0 = all)")
	model := flag.String("model", "", "model to use (default: LLM_DEFAULT_MODEL)")
	limit := flag.Int("limit", 50, "max conversations to process when -conversation is 0")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Load()
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()
	if err := st.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("failed to init schema")
	}

	extract := services.NewExtractService(st, services.NewLLMClient(cfg))
	ctx := context.Background()

	if *conversationID != 0 {
		runOne(ctx, extract, *conversationID, *model)
		return
	}

	convs, err := st.ListConversations(ctx, *limit, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list conversations")
	}
	for _, conv := range convs {
		runOne(ctx, extract, conv.ID, *model)
	}
}

func runOne(ctx context.Context, extract *services.ExtractService, id int64, model string) {
	content, err := extract.ExtractItems(ctx, id, model)
	if err != nil {
		log.Error().Err(err).Int64("conversation_id", id).Msg("extraction failed")
		return
	}
	fmt.Printf("conversation %d:\n%s\n\n", id, content)
}
