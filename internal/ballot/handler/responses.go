package handler

import (
	"votegate/internal/ballot/models"
	"votegate/internal/ballot/service"
)

type electionResponse struct {
	*models.Election
	Candidates []*models.Candidate `json:"candidates"`
}

type electionListResponse struct {
	Elections []electionResponse `json:"elections"`
	Count     int                `json:"count"`
}

type resultsResponse struct {
	ElectionID string              `json:"election_id"`
	Title      string              `json:"title"`
	Status     string              `json:"status"`
	TotalVotes int64               `json:"total_votes"`
	Candidates []*models.Candidate `json:"candidates"`
}

type hasVotedResponse struct {
	ElectionID string `json:"election_id"`
	VoterID    string `json:"voter_id"`
	HasVoted   bool   `json:"has_voted"`
}

func toElectionResponse(v service.ElectionView) electionResponse {
	candidates := v.Candidates
	if candidates == nil {
		candidates = []*models.Candidate{}
	}
	return electionResponse{Election: v.Election, Candidates: candidates}
}

func toResultsResponse(r *service.Results) resultsResponse {
	candidates := r.Candidates
	if candidates == nil {
		candidates = []*models.Candidate{}
	}
	return resultsResponse{
		ElectionID: r.Election.ID.String(),
		Title:      r.Election.Title,
		Status:     string(r.Election.Status),
		TotalVotes: r.TotalVotes,
		Candidates: candidates,
	}
}
