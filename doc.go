// Package educaia answers questions about a university from a small,
// line-delimited knowledge base.
//
// An Assistant holds the current corpus and a retrieval engine that combines
// embedding similarity with keyword overlap:
//
//	assistant, err := educaia.NewAssistant(educaia.WithAIConfig(ai.NewConfig()))
//	if err != nil {
//	    return err
//	}
//	defer assistant.Close()
//
//	status, err := assistant.LoadKnowledgeBase(ctx, "dados_faculdade.txt")
//	reply, err := assistant.Reply(ctx, "Quais cursos são oferecidos?")
//
// Ask returns the structured core.Result instead of chat text.
package educaia
