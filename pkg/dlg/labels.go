package dlg

// FileType is the four-character type tag of dialog files.
const FileType = "DLG "

// Field labels of the dialog schema.
const (
	labelDelayEntry      = "DelayEntry"
	labelDelayReply      = "DelayReply"
	labelEndConverAbort  = "EndConverAbort"
	labelEndConversation = "EndConversation"
	labelEntryList       = "EntryList"
	labelNumWords        = "NumWords"
	labelPreventZoomIn   = "PreventZoomIn"
	labelReplyList       = "ReplyList"
	labelStartingList    = "StartingList"

	labelSpeaker      = "Speaker"
	labelAnimation    = "Animation"
	labelAnimLoop     = "AnimLoop"
	labelText         = "Text"
	labelScript       = "Script"
	labelActionParams = "ActionParams"
	labelDelay        = "Delay"
	labelComment      = "Comment"
	labelSound        = "Sound"
	labelQuest        = "Quest"
	labelQuestEntry   = "QuestEntry"
	labelRepliesList  = "RepliesList"
	labelEntriesList  = "EntriesList"

	labelIndex           = "Index"
	labelActive          = "Active"
	labelConditionParams = "ConditionParams"
	labelIsChild         = "IsChild"
	labelLinkComment     = "LinkComment"

	labelKey   = "Key"
	labelValue = "Value"
)

// known labels per struct role; anything else is carried in Extra.
var (
	rootLabels = set(labelDelayEntry, labelDelayReply, labelEndConverAbort, labelEndConversation,
		labelEntryList, labelNumWords, labelPreventZoomIn, labelReplyList, labelStartingList)
	nodeLabels = set(labelSpeaker, labelAnimation, labelAnimLoop, labelText, labelScript,
		labelActionParams, labelDelay, labelComment, labelSound, labelQuest, labelQuestEntry,
		labelRepliesList, labelEntriesList)
)

func set(labels ...string) map[string]bool {
	m := make(map[string]bool, len(labels))
	for _, l := range labels {
		m[l] = true
	}
	return m
}

// pointerListLabel returns the label of the pointer list owned by kind k.
func pointerListLabel(k Kind) string {
	if k == KindEntry {
		return labelRepliesList
	}
	return labelEntriesList
}
